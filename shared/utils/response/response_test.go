package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"taskforge-backend/shared/utils/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, "Organization created successfully", gin.H{"slug": "acme-inc"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	var envelope struct {
		Success    bool                   `json:"success"`
		StatusCode int                    `json:"statusCode"`
		Message    string                 `json:"message"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}

	if !envelope.Success {
		t.Error("success = false, want true")
	}
	if envelope.StatusCode != http.StatusCreated {
		t.Errorf("statusCode = %d, want 201", envelope.StatusCode)
	}
	if envelope.Data["slug"] != "acme-inc" {
		t.Errorf("data.slug = %v, want acme-inc", envelope.Data["slug"])
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, apperror.Forbidden("You do not have permission to access this resource"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var envelope struct {
		Success    bool   `json:"success"`
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}

	if envelope.Success {
		t.Error("success = true, want false")
	}
	if envelope.StatusCode != http.StatusForbidden {
		t.Errorf("statusCode = %d, want 403", envelope.StatusCode)
	}
	if envelope.Message == "" {
		t.Error("message is empty")
	}
}

func TestErrorEnvelopeHidesUnknownErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, assertError("sensitive driver detail"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := w.Body.String(); body == "" || strings.Contains(body, "sensitive") {
		t.Errorf("internal detail leaked in body: %s", body)
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
