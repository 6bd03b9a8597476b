package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFilePathEdit(t *testing.T) {
	content := "File modified via Edit: /home/user/project/src/main.rs\n\nReplaced:"
	assert.Equal(t, "/home/user/project/src/main.rs", ExtractFilePath(content))
}

func TestExtractFilePathWrite(t *testing.T) {
	content := "File modified via Write: /home/user/project/new_file.rs"
	assert.Equal(t, "/home/user/project/new_file.rs", ExtractFilePath(content))
}

func TestExtractFilePathNone(t *testing.T) {
	content := "Tool `Bash` failed:\n\nExit code 1"
	assert.Equal(t, "", ExtractFilePath(content))
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "main.rs", basename("/home/user/project/src/main.rs"))
	assert.Equal(t, "main.rs", basename("main.rs"))
}
