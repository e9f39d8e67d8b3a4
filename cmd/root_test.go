package cmd

import (
    "bytes"
    "testing"
    "warebridge/pkg/models"
    "github.com/stretchr/testify/assert"
)

func TestRootCommand(t *testing.T) {
    // Test root command without arguments
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{})

    err := cmd.Execute()
    assert.NoError(t, err)

    output := b.String()
    assert.Contains(t, output, "warebridge")
    assert.Contains(t, output, "cross-warehouse references")
}

func TestRootCommandHelp(t *testing.T) {
    // Test help flag
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"--help"})

    err := cmd.Execute()
    assert.NoError(t, err)

    output := b.String()
    assert.Contains(t, output, "Available Commands:")
    assert.Contains(t, output, "analyze")
    assert.Contains(t, output, "migrate")
    assert.Contains(t, output, "setup")
    assert.Contains(t, output, "version")
}

func TestInvalidCommand(t *testing.T) {
    // Test invalid command
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"invalid-command"})

    err := cmd.Execute()
    assert.Error(t, err)
    assert.Contains(t, err.Error(), "unknown command")
}

func TestAnalyzeRequiresWarehouseArg(t *testing.T) {
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"analyze"})

    err := cmd.Execute()
    assert.Error(t, err)
}

func TestMigrateFlagsRegistered(t *testing.T) {
    assert.NotNil(t, migrateCmd.Flags().Lookup("deploy"))
    assert.NotNil(t, migrateCmd.Flags().Lookup("force"))
    assert.NotNil(t, migrateCmd.Flags().Lookup("yes"))
    assert.NotNil(t, migrateCmd.Flags().Lookup("run-id"))
}

func TestVersionCommand(t *testing.T) {
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"version"})

    err := cmd.Execute()
    assert.NoError(t, err)
}

func TestCredentialName(t *testing.T) {
    e := models.Endpoint{Server: "wh.example.com", Username: "migrator"}
    assert.Equal(t, "source:migrator@wh.example.com", credentialName("source", &e))
}
