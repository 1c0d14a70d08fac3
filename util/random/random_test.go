package random

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeq(t *testing.T) {
	s := Seq(32)
	assert.Len(t, s, 32)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-zA-Z]{32}$`), s)
	assert.NotEqual(t, s, Seq(32))
	assert.Equal(t, "", Seq(0))
}
