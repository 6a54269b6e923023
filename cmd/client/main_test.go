package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/template-marketplace/pkg/client"
)

func TestParseAnswers(t *testing.T) {
	got := parseAnswers([]string{"occupation=Engineer", "targetPlatforms=react,vue", "junk", "=x"})
	assert.Equal(t, client.Answers{
		"occupation":      "Engineer",
		"targetPlatforms": []string{"react", "vue"},
	}, got)
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"github=https://github.com/ada", "twitter="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"github": "https://github.com/ada", "twitter": ""}, got)

	_, err = parsePairs([]string{"github"})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Contains(t, describe(&client.LoginRequiredError{Next: "whoami"}), "log in")
	assert.Equal(t, "Invalid email or password", describe(&client.APIError{Status: 401, Message: "Invalid email or password"}))
	assert.Equal(t, client.ErrNetwork.Error(), describe(fmt.Errorf("%w (dial tcp)", client.ErrNetwork)))
}
