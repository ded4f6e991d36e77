package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createPatientBody struct {
	FirstName string `json:"first_name" binding:"required"`
	Telephone string `json:"telephone" binding:"required,min=8"`
	Email     string `json:"email" binding:"omitempty,email"`
	Urgency   string `json:"urgency" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/patients", func(c *gin.Context) {
		var req createPatientBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidationError_Fields(t *testing.T) {
	rec := postJSON(validationRouter(), `{"telephone":"123","email":"nope","urgency":"NOW"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["first_name"])
	assert.Equal(t, "Must be at least 8 characters", messages["telephone"])
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be one of: LOW MEDIUM HIGH", messages["urgency"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	rec := postJSON(validationRouter(), `{"first_name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errInfo := decodeError(t, rec)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errInfo.Code)
	assert.Empty(t, errInfo.Details)
}

func TestHandleValidationError_Valid(t *testing.T) {
	rec := postJSON(validationRouter(), `{"first_name":"Hedi","telephone":"98123456"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
