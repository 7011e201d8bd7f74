package utils

import "testing"

func TestGenUniqIDStr(t *testing.T) {
	SetupIDWorker(1)

	a := GenUniqIDStr()
	b := GenUniqIDStr()
	if a == b {
		t.Fatal("snowflake ids must be unique")
	}
	if a == "" || b == "" {
		t.Fatal("snowflake ids must not be empty")
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	res := ParseAcceptLanguage("zh-CN;q=0.8,en;q=0.9")
	if len(res) != 2 {
		t.Fatalf("expected 2 languages, got %d", len(res))
	}
	if res[0].Tag != "en" {
		t.Fatalf("expected en first by weight, got %s", res[0].Tag)
	}
}

func TestRandomStr(t *testing.T) {
	if got := RandomStr(32); len(got) != 32 {
		t.Fatalf("unexpected length %d", len(got))
	}
}
