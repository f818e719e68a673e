package ws

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

func TestDecode_Valid_Payload(t *testing.T) {
	req := require.New(t)
	validate := validator.New()

	cmd, err := decode[event.SendMessage](validate,
		json.RawMessage(`{"senderId":"alice","recipientId":"bob","message":"hi"}`))

	req.NoError(err)
	req.Equal("alice", cmd.SenderID)
	req.Equal("bob", cmd.RecipientID)
	req.Equal("hi", cmd.Message)
}

func TestDecode_Missing_Required_Field_Is_Rejected(t *testing.T) {
	req := require.New(t)
	validate := validator.New()

	_, err := decode[event.SendMessage](validate,
		json.RawMessage(`{"senderId":"alice","message":"hi"}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	_, err = decode[event.Join](validate, json.RawMessage(`{}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestDecode_Invalid_Json_Is_Rejected(t *testing.T) {
	req := require.New(t)
	validate := validator.New()

	_, err := decode[event.Join](validate, json.RawMessage(`{"userId":`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestDecode_Preserves_Opaque_Signal(t *testing.T) {
	req := require.New(t)
	validate := validator.New()
	frame := `{"targetId":"bob","senderId":"alice","signalData":{"type":"offer","sdp":"v=0"}}`

	cmd, err := decode[event.InitiateCall](validate, json.RawMessage(frame))

	req.NoError(err)
	req.JSONEq(`{"type":"offer","sdp":"v=0"}`, string(cmd.Signal))
}

func TestEncode_Wraps_Payload_Under_Event_Name(t *testing.T) {
	req := require.New(t)

	e := event.ActiveUsers{Users: []string{"alice", "bob"}}
	env, err := encode(e.EventName(), e)

	req.NoError(err)
	req.Equal("active_users", env.Event)
	req.JSONEq(`{"users":["alice","bob"]}`, string(env.Data))
}

func TestEnvelope_Round_Trip(t *testing.T) {
	req := require.New(t)

	env, err := encode("receive_message", map[string]string{"message": "hi"})
	req.NoError(err)

	raw, err := json.Marshal(env)
	req.NoError(err)

	var decoded Envelope
	req.NoError(json.Unmarshal(raw, &decoded))
	req.Equal("receive_message", decoded.Event)
	req.JSONEq(`{"message":"hi"}`, string(decoded.Data))
}
