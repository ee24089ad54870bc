package ginserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"

	"spotaway/internal/domain/shared/fault"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		kind fault.Kind
		want int
	}{
		{fault.KindNotFound, http.StatusNotFound},
		{fault.KindForbidden, http.StatusForbidden},
		{fault.KindValidationFailed, http.StatusBadRequest},
		{fault.KindConflict, http.StatusConflict},
		{fault.KindLimitExceeded, http.StatusForbidden},
		{fault.KindStoreUnavailable, http.StatusServiceUnavailable},
		{fault.Kind("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.kind); got != tc.want {
			t.Errorf("statusFor(%q) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestRenderErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	f := fault.Validation("booking validation failed").
		WithField("endDate", "End date must be after start date")
	renderError(c, f)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "booking validation failed" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Errors["endDate"] != "End date must be after start date" {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestRenderErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	renderError(c, fault.StoreUnavailable(errors.New("dial tcp: connection refused")))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	got := rec.Body.String()
	if got == "" || strings.Contains(got, "connection refused") {
		t.Errorf("body = %q, must not leak the cause", got)
	}
}
