package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCmdInfersReturnType(t *testing.T) {
	body := `{
		"fqn": "test.fn",
		"params": [],
		"body": [
			{"Kind": "return", "Value": {"Kind": "literal", "LiteralKind": "int", "LiteralInt": 1}}
		]
	}`

	root := &cobra.Command{Use: "pathfinder"}
	root.AddCommand(analyzeCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(body))
	root.SetArgs([]string{"analyze"})

	require.NoError(t, root.Execute())

	var result analyzeResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "test.fn", result.FunctionFQN)
	assert.NotEmpty(t, result.ReturnType)
}

func TestAnalyzeCmdReadsFromInputFlag(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/fn.json"
	body := []byte(`{"fqn": "test.fromFile", "params": [], "body": []}`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	root := &cobra.Command{Use: "pathfinder"}
	root.AddCommand(analyzeCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "--input", path})

	require.NoError(t, root.Execute())

	var result analyzeResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "test.fromFile", result.FunctionFQN)
}
