package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}
