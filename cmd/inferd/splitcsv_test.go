package main

import (
	"reflect"
	"testing"

	"inferd/internal/config"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{"*", []string{"*"}},
	}
	for _, tc := range cases {
		got := splitCSV(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitCSV(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMergeConfig_FileThenFlags(t *testing.T) {
	cmd := buildRootCmd()
	if err := cmd.Flags().Set("addr", ":7070"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fileCfg := config.Config{Addr: ":9090", ModelsDir: "/file/models", IdleTTLSec: 300}
	flagCfg := config.Config{Addr: ":7070", ModelsDir: "~/models/llm", LogLevel: "info"}
	// The merge keeps file values for anything the user did not set.
	out := mergeConfig(fileCfg, flagCfg, cmd)
	if out.Addr != ":7070" {
		t.Fatalf("addr=%q, want flag override", out.Addr)
	}
	if out.ModelsDir != "/file/models" {
		t.Fatalf("models_dir=%q, want file value", out.ModelsDir)
	}
	if out.IdleTTLSec != 300 {
		t.Fatalf("idle_ttl_sec=%d, want file value", out.IdleTTLSec)
	}
	if out.LogLevel != "info" {
		t.Fatalf("log_level=%q, want flag default filling empty file value", out.LogLevel)
	}
}
