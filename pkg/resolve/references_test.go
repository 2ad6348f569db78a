package resolve

import (
	"path/filepath"
	"testing"
)

func TestFindReferences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Reference
	}{
		{
			name: "plain reference",
			text: "see [[./other.puml]]",
			want: []Reference{{Marker: "[[./other.puml]]", Target: "./other.puml"}},
		},
		{
			name: "labeled reference",
			text: "see [[./other.puml Subsystem view]]",
			want: []Reference{{Marker: "[[./other.puml Subsystem view]]", Target: "./other.puml", Label: "Subsystem view"}},
		},
		{
			name: "all extensions",
			text: "[[a.puml]] [[b.plantuml]] [[c.pu]] [[d.iuml]]",
			want: []Reference{
				{Marker: "[[a.puml]]", Target: "a.puml"},
				{Marker: "[[b.plantuml]]", Target: "b.plantuml"},
				{Marker: "[[c.pu]]", Target: "c.pu"},
				{Marker: "[[d.iuml]]", Target: "d.iuml"},
			},
		},
		{
			name: "uppercase extension",
			text: "[[X.PUML]]",
			want: []Reference{{Marker: "[[X.PUML]]", Target: "X.PUML"}},
		},
		{
			name: "parent traversal",
			text: "[[../shared/core.puml]]",
			want: []Reference{{Marker: "[[../shared/core.puml]]", Target: "../shared/core.puml"}},
		},
		{
			name: "repeated marker repeats",
			text: "[[a.puml]] and [[a.puml]]",
			want: []Reference{
				{Marker: "[[a.puml]]", Target: "a.puml"},
				{Marker: "[[a.puml]]", Target: "a.puml"},
			},
		},
		{
			name: "url hyperlink ignored",
			text: "[[https://example.com docs]]",
			want: nil,
		},
		{
			name: "wrong extension ignored",
			text: "[[diagram.svg]] [[file.txt]]",
			want: nil,
		},
		{
			name: "no references",
			text: "@startuml\nA --> B\n@enduml",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindReferences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("FindReferences() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("FindReferences()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReferenceWithTarget(t *testing.T) {
	plain := Reference{Marker: "[[./a.puml]]", Target: "./a.puml"}
	if got := plain.WithTarget("https://srv/svg/x"); got != "[[https://srv/svg/x]]" {
		t.Errorf("WithTarget() = %q", got)
	}

	labeled := Reference{Marker: "[[./a.puml My label]]", Target: "./a.puml", Label: "My label"}
	if got := labeled.WithTarget("https://srv/svg/x"); got != "[[https://srv/svg/x My label]]" {
		t.Errorf("WithTarget() = %q", got)
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		dir  string
		ref  string
		want string
	}{
		{"/proj/diagrams", "./a.puml", "/proj/diagrams/a.puml"},
		{"/proj/diagrams", "a.puml", "/proj/diagrams/a.puml"},
		{"/proj/diagrams", "../shared/b.puml", "/proj/shared/b.puml"},
		{"/proj/diagrams", "/abs/c.puml", "/abs/c.puml"},
		{"/proj/diagrams", "sub/../d.puml", "/proj/diagrams/d.puml"},
	}

	for _, tt := range tests {
		if got := CanonicalPath(tt.dir, tt.ref); got != filepath.FromSlash(tt.want) {
			t.Errorf("CanonicalPath(%q, %q) = %q, want %q", tt.dir, tt.ref, got, tt.want)
		}
	}
}
