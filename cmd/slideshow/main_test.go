package main

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestListBMPs(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("slides/sub.bmp", 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"slides/b.bmp",
		"slides/a.BMP",
		"slides/note.txt",
		"slides/sub.bmp/nested.bmp",
	} {
		if err := afero.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := listBMPs(fs, "slides")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"slides/a.BMP", "slides/b.bmp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("listBMPs returned %v, expected %v", got, want)
	}
}

func TestListBMPsMissingDir(t *testing.T) {
	if _, err := listBMPs(afero.NewMemMapFs(), "nowhere"); err == nil {
		t.Error("missing directory accepted")
	}
}
