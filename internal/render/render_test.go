package render

import (
	"strings"
	"testing"

	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/sit"
	"github.com/gzhole/sitbench/internal/synth"
)

func TestRoundTrip_AllLayouts(t *testing.T) {
	reg := sit.Builtin()
	s := synth.New(reg)
	renderers := Default()

	for _, layout := range synth.Layouts() {
		doc, err := s.Synthesize(plan.DocumentSpec{
			DocID:      "doc_00012",
			Format:     layout,
			WordTarget: 120,
			SITs:       []plan.SITCount{{SITID: "SIT_SSN", Count: 2}, {SITID: "SIT_IBAN", Count: 1}},
		}, 9)
		if err != nil {
			t.Fatal(err)
		}
		for _, format := range renderers.Formats() {
			t.Run(layout+"/"+format, func(t *testing.T) {
				r, err := renderers.Lookup(format)
				if err != nil {
					t.Fatal(err)
				}
				data, err := r.Render(doc)
				if err != nil {
					t.Fatalf("Render: %v", err)
				}
				got, err := r.Extract(data)
				if err != nil {
					t.Fatalf("Extract: %v", err)
				}
				if got != doc.Text {
					t.Errorf("round trip changed text:\nwant %q\ngot  %q", doc.Text, got)
				}
			})
		}
	}
}

func TestEML_HeadersFromEmailLayout(t *testing.T) {
	doc := &synth.Document{
		DocID: "doc_00001",
		Text:  "From: maria.lopez@example.com\nTo: hugo.keller@example.org\nSubject: Reviewed the budget proposal\n\nBody text.\n",
	}
	data, err := EML{}.Render(doc)
	if err != nil {
		t.Fatal(err)
	}
	head := string(data[:strings.Index(string(data), "\r\n\r\n")])
	for _, want := range []string{
		"From: <maria.lopez@example.com>",
		"To: <hugo.keller@example.org>",
		"Subject: Reviewed the budget proposal",
		"Content-Type: text/plain; charset=utf-8",
	} {
		if !strings.Contains(head, want) {
			t.Errorf("header block missing %q:\n%s", want, head)
		}
	}
}

func TestEML_DefaultsForNonEmailText(t *testing.T) {
	doc := &synth.Document{DocID: "doc_00002", Text: "CONFIDENTIAL - Document doc_00002\n\nhello"}
	data, err := EML{}.Render(doc)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, "From: <"+defaultFrom+">") || !strings.Contains(s, "Subject: Automated message doc_00002") {
		t.Errorf("expected default headers:\n%s", s)
	}
}

func TestEML_ExtractEncodedBodies(t *testing.T) {
	tests := []struct {
		name, msg, want string
	}{
		{
			name: "quoted-printable",
			msg:  "Content-Type: text/plain\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\nSSN =3D 123-45-6789",
			want: "SSN = 123-45-6789",
		},
		{
			name: "base64",
			msg:  "Content-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\nU1NOIDEyMy00\r\nNS02Nzg5",
			want: "SSN 123-45-6789",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EML{}.Extract([]byte(tt.msg))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := (EML{}).Extract([]byte("Content-Type: text/html\r\n\r\n<p>x</p>")); err == nil {
		t.Error("expected error for non-plain body")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := Default()
	if _, err := reg.Lookup(".EML"); err != nil {
		t.Errorf("Lookup(.EML): %v", err)
	}
	if _, err := reg.Lookup("pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if got := Filename("doc_00001", "txt"); got != "doc_00001.txt" {
		t.Errorf("Filename = %q", got)
	}
}
