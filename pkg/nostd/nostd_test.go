package nostd

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, TruncateRunes("黄金价格", 2), "黄金...")
	assert.Equal(t, TruncateRunes("gold", 4), "gold")
	assert.Equal(t, TruncateRunes("gold", 0), "")
}

type sample struct {
	Query string `validate:"max=5"`
}

func TestCustomValidator(t *testing.T) {
	cv := CustomValidator{Validator: validator.New()}
	assert.Equal(t, cv.TransInit(), nil)

	assert.Equal(t, cv.Validate(&sample{Query: "gold"}), nil)

	err := cv.Validate(&sample{Query: "gold price"})
	var he *echo.HTTPError
	assert.Equal(t, errors.As(err, &he), true)
	assert.Equal(t, he.Code, http.StatusBadRequest)
	assert.Equal(t, strings.Contains(he.Message.(string), "Query"), true)
}
