package main

import (
	"testing"
	"time"
)

func TestParseMarkdown(t *testing.T) {
	input := `---
author: 3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3
title: 수학여행
recipient: 반 친구들
type: time_locked
unlock_at: 2030-03-01T09:00:00+09:00
location: Gyeongju
---

우리 다시 만나면 이 편지를 같이 읽자.
`
	fm, body, err := parseMarkdown(input)
	if err != nil {
		t.Fatalf("parse markdown: %v", err)
	}
	if fm.Title != "수학여행" || fm.Type != "time_locked" {
		t.Fatalf("unexpected front matter: %+v", fm)
	}
	if body != "우리 다시 만나면 이 편지를 같이 읽자." {
		t.Fatalf("unexpected body: %q", body)
	}

	req, err := frontMatterToRequest(fm, body)
	if err != nil {
		t.Fatalf("to request: %v", err)
	}
	want := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	if req.UnlockAt == nil || !req.UnlockAt.Equal(want) {
		t.Fatalf("expected unlock_at %s, got %v", want, req.UnlockAt)
	}
	if req.Location == nil || *req.Location != "Gyeongju" {
		t.Fatalf("expected location, got %v", req.Location)
	}
	if req.Message != body {
		t.Fatalf("expected message from body, got %q", req.Message)
	}
}

func TestParseMarkdownWithoutFrontMatter(t *testing.T) {
	fm, body, err := parseMarkdown("just a note\n")
	if err != nil {
		t.Fatalf("parse markdown: %v", err)
	}
	if fm != (capsuleFrontMatter{}) {
		t.Fatalf("expected empty front matter, got %+v", fm)
	}
	if body != "just a note" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestParseMarkdownUnclosedFrontMatter(t *testing.T) {
	if _, _, err := parseMarkdown("---\ntitle: x\nbody"); err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}

func TestParseUnlockAt(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "2030-01-02T03:04:05Z", want: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)},
		{raw: "2030-01-02", want: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)},
		{raw: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseUnlockAt(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
