package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNumberRequired(t *testing.T) {
	cases := []interface{}{nil, "", "   "}
	for _, value := range cases {
		err := ValidateNumber(value, 0, 10, false, false, "Temperature")
		assert.EqualError(t, err, `"Temperature" is required`)
	}
}

func TestValidateNumberOptionalAllowsEmpty(t *testing.T) {
	assert.NoError(t, ValidateNumber(nil, 0, 10, false, true, "Top P"))
	assert.NoError(t, ValidateNumber("", 0, 10, false, true, "Top P"))
	assert.NoError(t, ValidateNumber("  ", 0, 10, false, true, "Top P"))
}

func TestValidateNumberRange(t *testing.T) {
	err := ValidateNumber("11", 0, 10, false, false, "Temperature")
	assert.EqualError(t, err, `"Temperature" must be less than or equal to 10`)

	err = ValidateNumber(-0.5, 0, 10, false, false, "Temperature")
	assert.EqualError(t, err, `"Temperature" must be greater than or equal to 0`)

	assert.NoError(t, ValidateNumber("5", 0, 10, false, false, "Temperature"))
	assert.NoError(t, ValidateNumber(0.0, 0, 10, false, false, "Temperature"))
	assert.NoError(t, ValidateNumber(10.0, 0, 10, false, false, "Temperature"))
}

func TestValidateNumberNonNumeric(t *testing.T) {
	err := ValidateNumber("abc", 0, 10, false, false, "Chunk Size")
	assert.EqualError(t, err, `"Chunk Size" must be a number`)
}

func TestValidateNumberIntegerRejectsFractionalStringsOnly(t *testing.T) {
	err := ValidateNumber("2.5", 0, 10, true, false, "Pairs")
	assert.EqualError(t, err, `"Pairs" must be an integer`)

	// Native numbers are not re-checked for integrality.
	assert.NoError(t, ValidateNumber(2.5, 0, 10, true, false, "Pairs"))
	assert.NoError(t, ValidateNumber("3", 0, 10, true, false, "Pairs"))
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("my_dataset v2", 3, 120))

	assert.Error(t, ValidateFilename("ab", 3, 120))
	assert.Error(t, ValidateFilename("bad/name", 3, 120))
	assert.EqualError(t, ValidateFilename("_name", 3, 120), "cannot start or end with an underscore")
	assert.EqualError(t, ValidateFilename("a__b", 3, 120), "cannot contain consecutive underscores")
	assert.EqualError(t, ValidateFilename(" name", 3, 120), "cannot start or end with whitespace")
	assert.EqualError(t, ValidateFilename("a  b", 3, 120), "cannot contain consecutive spaces")
}

func TestToolNameValidator(t *testing.T) {
	assert.NoError(t, ToolNameValidator("my_tool"))
	assert.NoError(t, ToolNameValidator("tool2"))

	assert.EqualError(t, ToolNameValidator("my__tool"), "Cannot contain consecutive underscores")
	assert.EqualError(t, ToolNameValidator("_tool"), "Cannot start or end with an underscore")
	assert.EqualError(t, ToolNameValidator("tool_"), "Cannot start or end with an underscore")
	assert.EqualError(t, ToolNameValidator("1tool"), "Must start with a lowercase letter")
	assert.EqualError(t, ToolNameValidator("MyTool"), "Must start with a lowercase letter")
	assert.EqualError(t, ToolNameValidator("my-tool"), "Can only contain lowercase letters, numbers, and underscores")
	assert.Error(t, ToolNameValidator(""))

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.EqualError(t, ToolNameValidator(string(long)), "Must be at most 64 characters")
}
