package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/compliance"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/validation"
)

func newTestHandlers() *Handlers {
	db := memory.New()
	return &Handlers{deps: &Deps{Compliance: compliance.NewValidator(db)}}
}

func TestValidateComplianceRejectsMissingDatesWith422(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/compliance/validate", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := newTestHandlers()
	require.NoError(t, h.ValidateCompliance(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, rec.Body.String(), "start_date")
	assert.Contains(t, rec.Body.String(), "end_date")
}

func TestLocaleFromRequestHonorsAcceptLanguage(t *testing.T) {
	e := echo.New()

	cases := []struct {
		header string
		want   validation.Locale
	}{
		{"", validation.LocaleEnUS},
		{"en-US,en;q=0.9", validation.LocaleEnUS},
		{"es-ES", validation.LocaleEsES},
		{"fr", validation.LocaleFrFR},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Accept-Language", tc.header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, tc.want, localeFromRequest(c))
	}
}

func TestValidateComplianceRendersSpanishFieldMessage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/compliance/validate", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Accept-Language", "es-ES")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := newTestHandlers()
	require.NoError(t, h.ValidateCompliance(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "es requerido")
}
