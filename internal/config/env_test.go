package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("DOCENT_TEST_VAR", "hello")

	cases := []struct {
		input string
		want  string
	}{
		{"${DOCENT_TEST_VAR}", "hello"},
		{"$DOCENT_TEST_VAR", "hello"},
		{"prefix-${DOCENT_TEST_VAR}-suffix", "prefix-hello-suffix"},
		{"${DOCENT_TEST_UNSET_VAR}", ""},
		{"no variables here", "no variables here"},
	}

	for _, tc := range cases {
		if got := ExpandEnv(tc.input); got != tc.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestExpandEnvMap(t *testing.T) {
	t.Setenv("DOCENT_TEST_HOME", "/opt/docent")

	m := map[string]string{
		"dir":   "${DOCENT_TEST_HOME}/contracts",
		"plain": "value",
	}

	expanded := ExpandEnvMap(m)
	if expanded["dir"] != "/opt/docent/contracts" {
		t.Errorf("Expected expanded dir, got %q", expanded["dir"])
	}
	if expanded["plain"] != "value" {
		t.Errorf("Expected plain value unchanged, got %q", expanded["plain"])
	}

	if ExpandEnvMap(nil) != nil {
		t.Error("Expected nil map to stay nil")
	}
}
