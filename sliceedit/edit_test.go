// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

package sliceedit

import (
	"reflect"
	"regexp"
	"testing"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		item string
		want []int
	}{
		{"no match", "abcdef", "xy", []int{}},
		{"single", "abcdef", "cd", []int{2}},
		{"multiple", "aXbXcX", "X", []int{1, 3, 5}},
		{"empty item", "abc", "", []int{}},
		{"adjacent", "XXXX", "XX", []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll([]byte(tt.buf), tt.item)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindAll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReplaceAllString(t *testing.T) {
	b := NewBuffer([]byte("one two one"))
	b.ReplaceAllString("one", "1")
	if got := b.String(); got != "1 two 1" {
		t.Errorf("ReplaceAllString() = %q, want %q", got, "1 two 1")
	}
}

func TestDeleteAllString(t *testing.T) {
	b := NewBuffer([]byte("a--b--c"))
	b.DeleteAllString("--")
	if got := b.String(); got != "abc" {
		t.Errorf("DeleteAllString() = %q, want %q", got, "abc")
	}
}

func TestReplace(t *testing.T) {
	b := NewBuffer([]byte("hello world"))
	b.Replace(6, 11, "there")
	if got := b.String(); got != "hello there" {
		t.Errorf("Replace() = %q, want %q", got, "hello there")
	}
}

func TestReplaceAllSubmatchFunc(t *testing.T) {
	re := regexp.MustCompile(`\\ref\{([^}]*)\}`)

	b := NewBuffer([]byte(`see \ref{alpha} and \ref{beta}`))
	b.ReplaceAllSubmatchFunc(re, func(sub [][]byte) string {
		return "<" + string(sub[1]) + ">"
	})

	want := "see <alpha> and <beta>"
	if got := b.String(); got != want {
		t.Errorf("ReplaceAllSubmatchFunc() = %q, want %q", got, want)
	}
}
