package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{name: "string", in: `"3f1c"`, want: "3f1c"},
		{name: "number", in: `1`, want: "1"},
		{name: "null", in: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestTimestamp_JSON(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","role":"user","content":"hi","created_at":1700000000}`), &m))
	assert.Equal(t, int64(1700000000), m.CreatedAt.Unix())
	assert.Equal(t, MessageStatus(""), m.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"created_at":"2024-01-02T03:04:05Z"}`), &m))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), m.CreatedAt.UTC())

	out, err := json.Marshal(Timestamp{time.Unix(42, 0)})
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))
}

func TestProvisionalID(t *testing.T) {
	id := ProvisionalID(time.Unix(0, 1234))
	assert.Equal(t, ID("temp-1234"), id)
	assert.True(t, id.IsProvisional())
	assert.False(t, ID("3f1c").IsProvisional())
}

func TestChatResponse_Message(t *testing.T) {
	msg := ChatResponse{ID: "a1", Content: "hello"}.Message()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, StatusConfirmed, msg.Status)
	assert.Equal(t, ID("a1"), msg.ID)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(UserLogin{Email: "a@b.com", Password: "secret1"}))

	err := Validate(UserLogin{Email: "not-an-email"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid email format", verr.Fields["email"])
	assert.Equal(t, "field is required", verr.Fields["password"])
	assert.Equal(t, "invalid input: email invalid email format, password field is required", err.Error())
}

func TestConversation_IsZero(t *testing.T) {
	assert.True(t, Conversation{}.IsZero())
	assert.False(t, Conversation{ID: "c1"}.IsZero())
}
