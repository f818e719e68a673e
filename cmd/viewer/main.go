// Read-only inspection CLI for the message store. Opens badger with the
// lock guard bypassed so it can run next to a live relay.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"chat-relay/domain"
)

func main() {
	dbPath := flag.String("db", "/tmp/chat-relay/badger", "Path to badger DB")
	user := flag.String("user", "", "Only show messages for this participant")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefix := "msg:"
	if *user != "" {
		prefix = fmt.Sprintf("msg:%s:", *user)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "Recipient", "Content", "ID"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Without a user filter every message appears twice (one copy
			// per participant); keep only the sender-side copy.
			if *user == "" {
				key := string(item.Key())
				parts := strings.SplitN(key, ":", 3)
				if len(parts) == 3 {
					var peek domain.Message
					_ = item.Value(func(v []byte) error {
						return json.Unmarshal(v, &peek)
					})
					if peek.SenderID != parts[1] {
						continue
					}
				}
			}

			err := item.Value(func(v []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(v, &msg); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					msg.CreatedAt.Format("2006-01-02 15:04:05"),
					msg.SenderID,
					msg.RecipientID,
					msg.Content,
					msg.ID.String()[:8],
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	color.Cyanln(fmt.Sprintf("%d message(s) under %q", count, prefix))
	table.Render()
}
