package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"citizen-helpdesk-be/internal/dto"
	"citizen-helpdesk-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(&dto.SetModeRequest{Mode: "hitl"})
	assert.NoError(t, err)

	err = ValidateRequest(&dto.SetModeRequest{Mode: "manual"})
	require.Error(t, err)
	fiberErr, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "mode")

	err = ValidateRequest(&dto.GenerateAnswerRequest{})
	require.Error(t, err)
	fiberErr, ok = err.(*fiber.Error)
	require.True(t, ok)
	assert.Contains(t, fiberErr.Message, "question")
}

func TestSuccessResponseEnvelope(t *testing.T) {
	resp := SuccessResponse("Mode updated", dto.GetModeResponse{Mode: "hitl"})
	assert.True(t, resp.Success)
	assert.Equal(t, "Mode updated", resp.Message)
	assert.Equal(t, "hitl", resp.Data.Mode)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
		wantMsg    string
	}{
		{
			name:       "domain validation error maps to 400",
			err:        &rag.ValidationError{Field: "question", Message: "question must not be empty"},
			wantStatus: fiber.StatusBadRequest,
			wantField:  "question",
			wantMsg:    "question must not be empty",
		},
		{
			name:       "fiber error keeps its code",
			err:        fiber.NewError(fiber.StatusNotFound, "log entry not found"),
			wantStatus: fiber.StatusNotFound,
			wantMsg:    "log entry not found",
		},
		{
			name:       "unknown error hides detail behind 500",
			err:        assert.AnError,
			wantStatus: fiber.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantField, body.Field)
		})
	}
}
