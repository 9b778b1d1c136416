// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCPUList(t *testing.T) {
	tests := []struct {
		input   string
		want    []uint32
		wantErr bool
	}{
		{"", nil, false},
		{"0", []uint32{0}, false},
		{"0-3", []uint32{0, 1, 2, 3}, false},
		{"0-1,8,10-11\n", []uint32{0, 1, 8, 10, 11}, false},
		{"3-1", nil, true},
		{"a-b", nil, true},
		{"1,", nil, true},
		{"3,1-2,2", []uint32{1, 2, 3}, false},
		{"65535", []uint32{65535}, false},
		{"0-4294967295", nil, true},
		{"0-65536", nil, true},
		{"99999999999", nil, true},
	}
	for _, test := range tests {
		got, err := ParseCPUList(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseCPUList(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("ParseCPUList(%q) mismatch (-want +got):\n%s", test.input, diff)
		}
	}
}

func TestReadCacheSize(t *testing.T) {
	directory := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    uint64
	}{
		{"kilobytes", "32768K", 32768 * 1024},
		{"megabytes", "2M", 2 * 1024 * 1024},
		{"empty", "", 0},
		{"no_suffix", "1024", 1024},
		{"garbage", "fooK", 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, test.name)
			if test.content != "" {
				if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
			} else {
				path = filepath.Join(directory, "nonexistent")
			}
			got := readCacheSize(path)
			if got != test.want {
				t.Errorf("readCacheSize(%q) = %d, want %d", test.content, got, test.want)
			}
		})
	}
}

func TestReadSysfsUint32(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "id")

	if _, err := ReadSysfsUint32(path); err == nil {
		t.Error("ReadSysfsUint32 on a missing file succeeded")
	}
	if err := os.WriteFile(path, []byte("0\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if value, err := ReadSysfsUint32(path); err != nil || value != 0 {
		t.Errorf("ReadSysfsUint32 = %d, %v; want 0", value, err)
	}
	if err := os.WriteFile(path, []byte("-1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadSysfsUint32(path); err == nil {
		t.Error("ReadSysfsUint32 accepted a negative value")
	}
}

func TestCPUNumber(t *testing.T) {
	tests := []struct {
		name string
		want uint32
		ok   bool
	}{
		{"cpu0", 0, true},
		{"cpu127", 127, true},
		{"cpufreq", 0, false},
		{"cpuidle", 0, false},
		{"cpu", 0, false},
		{"online", 0, false},
	}
	for _, test := range tests {
		got, ok := cpuNumber(test.name)
		if got != test.want || ok != test.ok {
			t.Errorf("cpuNumber(%q) = %d, %v; want %d, %v", test.name, got, ok, test.want, test.ok)
		}
	}
}

func TestFormatCPUList(t *testing.T) {
	tests := []struct {
		input []uint32
		want  string
	}{
		{nil, ""},
		{[]uint32{5}, "5"},
		{[]uint32{0, 1, 2, 3, 8, 10, 11}, "0-3,8,10-11"},
		{[]uint32{4, 0, 1}, "0-1,4"},
		{[]uint32{2, 2, 3}, "2-3"},
	}
	for _, test := range tests {
		if got := FormatCPUList(test.input); got != test.want {
			t.Errorf("FormatCPUList(%v) = %q, want %q", test.input, got, test.want)
		}
	}

	cpus := []uint32{0, 1, 2, 7, 9, 10}
	parsed, err := ParseCPUList(FormatCPUList(cpus))
	if err != nil {
		t.Fatalf("ParseCPUList: %v", err)
	}
	if diff := cmp.Diff(cpus, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
