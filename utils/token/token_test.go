package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	signed, err := GenerateToken("cli", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)
	assert.Equal(t, "tasktracker", claims.Issuer)
}

func TestGenerateToken_RequiresSubject(t *testing.T) {
	_, err := GenerateToken("", testSecret, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestValidateToken_Rejects(t *testing.T) {
	expired, err := GenerateToken("cli", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	signed, err := GenerateToken("cli", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(signed, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken("garbage", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		url     string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer header", url: "/api/tasks", header: "Bearer abc", want: "abc"},
		{name: "query parameter", url: "/api/ws?token=xyz", want: "xyz"},
		{name: "missing", url: "/api/tasks", wantErr: ErrAuthHeaderMissing},
		{name: "wrong scheme", url: "/api/tasks", header: "Basic abc", wantErr: ErrInvalidAuthFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			got, err := ExtractToken(c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
