package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/tools/tooltest"
)

func TestList(t *testing.T) {
	env := List[outlook.Record]("contacts", nil)
	assert.Equal(t, 0, env["count"])
	assert.Equal(t, []outlook.Record{}, env["contacts"])

	env = List("folders", []outlook.Record{{"name": "Inbox"}}).With("info", "x")
	assert.Equal(t, 1, env["count"])
	assert.Equal(t, "x", env["info"])
}

func TestSuccessResult(t *testing.T) {
	result := SuccessResult(Envelope{"message": "Email sent"})
	env := tooltest.Decode(t, result)

	assert.False(t, result.IsError)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "Email sent", env["message"])
}

func TestSuccessResult_EmptyListIsArray(t *testing.T) {
	env := tooltest.Decode(t, SuccessResult(List[outlook.Record]("emails", nil)))
	assert.Equal(t, []any{}, env["emails"])
}

func TestErrorResult_Unsupported(t *testing.T) {
	result := ErrorResult(&outlook.Error{Kind: outlook.KindUnsupported, Msg: "out-of-office settings are not available"})
	env := tooltest.Decode(t, result)

	assert.True(t, result.IsError)
	assert.Equal(t, "unsupported", env["error_type"])
	assert.Equal(t, "out-of-office settings are not available", env["error"])
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "validation", ErrorType(outlook.ErrValidation))
	assert.Equal(t, "host", ErrorType(assert.AnError))
}
