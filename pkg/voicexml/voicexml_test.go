package voicexml

import (
	"strings"
	"testing"
)

func render(t *testing.T, r *Response) string {
	t.Helper()
	out, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestRenderKeepsVerbOrder(t *testing.T) {
	out := render(t, New("alice").
		Say("Sorry about that.").
		Dial("+2348000000000"))

	say := strings.Index(out, `<Say voice="alice">Sorry about that.</Say>`)
	dial := strings.Index(out, `<Dial>+2348000000000</Dial>`)
	if say < 0 || dial < 0 || say > dial {
		t.Fatalf("unexpected markup: %s", out)
	}
	if !strings.HasPrefix(out, "<?xml") {
		t.Fatalf("missing xml header: %s", out)
	}
}

func TestGatherNestsPrompt(t *testing.T) {
	out := render(t, New("").Gather("/api/v1/assistant/voice/gather?property_id=p1", 5, "Anything else?"))

	for _, want := range []string{
		`<Gather input="speech" action="/api/v1/assistant/voice/gather?property_id=p1" method="POST" timeout="5" speechTimeout="auto">`,
		`<Say>Anything else?</Say></Gather>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestTextIsEscaped(t *testing.T) {
	out := render(t, New("").Say(`Rules: no "parties" & <pets>`).Hangup())
	if !strings.Contains(out, "&amp; &lt;pets&gt;") {
		t.Fatalf("text not escaped: %s", out)
	}
	if !strings.Contains(out, "<Hangup></Hangup>") {
		t.Fatalf("missing hangup: %s", out)
	}
}
