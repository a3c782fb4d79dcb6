package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFKey(t *testing.T) {
	assert.Equal(t, "pdf/w1/abc-de.pdf", PDFKey("w1", "abc", "DE", false))
	assert.Equal(t, "pdf/w1/abc-ch-solutions.pdf", PDFKey("w1", "abc", "CH", true))
	assert.Equal(t, "pdf/w1/", PDFPrefix("w1"))
}
