package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   Resp
		want string
	}{
		{"ok nil data", OK(nil), `{"code":0,"msg":"OK","data":{}}`},
		{"ok payload", OK(map[string]int{"id": 1}), `{"code":0,"msg":"OK","data":{"id":1}}`},
		{"default msg", Error(CodeConflict, ""), `{"code":409,"msg":"Conflict","data":{}}`},
		{"custom msg", Error(CodeNotFound, "user 7 not found"), `{"code":404,"msg":"user 7 not found","data":{}}`},
		{"with data", ErrorWithData(CodeBadRequest, "", []string{"email"}), `{"code":400,"msg":"Bad Request","data":["email"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}
