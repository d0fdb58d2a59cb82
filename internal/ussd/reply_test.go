package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMsisdn(t *testing.T) {
	cases := map[string]string{
		"+254712345678":   "+254712345678",
		"254712345678":    "+254712345678",
		"0712345678":      "+254712345678",
		"712345678":       "+254712345678",
		"112345678":       "+254112345678",
		"+254 712 345678": "+254712345678",
		"0712-345-678":    "+254712345678",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeMsisdn(in), "input %q", in)
	}
}

func TestParseSegments(t *testing.T) {
	assert.Nil(t, ParseSegments(""))
	assert.Equal(t, []string{"2"}, ParseSegments("2"))
	assert.Equal(t, []string{"2", "Nairobi", "1"}, ParseSegments("2* Nairobi *1"))
	// Consecutive separators keep their empty fragment; an empty answer
	// is an input the replay must see.
	assert.Equal(t, []string{"1", "", "Kiambu"}, ParseSegments("1**Kiambu"))
}

func TestParseIndex(t *testing.T) {
	assert.Equal(t, 3, ParseIndex("3"))
	assert.Equal(t, 12, ParseIndex("12"))
	assert.Equal(t, -1, ParseIndex(""))
	assert.Equal(t, -1, ParseIndex("abc"))
	assert.Equal(t, -1, ParseIndex("1a"))
	assert.Equal(t, -1, ParseIndex("-1"))
}

func TestReplyRender(t *testing.T) {
	assert.Equal(t, "CON pick one", Continue("pick one").Render())
	assert.Equal(t, "END bye", End("bye").Render())

	r := InvalidInput("pick one")
	assert.True(t, r.Invalid)
	assert.Equal(t, KindContinue, r.Kind)
	assert.Equal(t, "CON "+invalidInputPrefix+"\npick one", r.Render())
}
