package i18n

import "testing"

func TestLocalizerGet(t *testing.T) {
	l := NewLocalizer("en", "zh-CN")

	if got := l.Get("en", ERROR_INSUFFICIENT_BALANCE); got == ERROR_INSUFFICIENT_BALANCE {
		t.Fatalf("expected localized message for %s, got the raw id", ERROR_INSUFFICIENT_BALANCE)
	}

	if got := l.Get("zh-CN", ERROR_UNAUTHORIZED); got == ERROR_UNAUTHORIZED {
		t.Fatalf("expected localized zh-CN message for %s, got the raw id", ERROR_UNAUTHORIZED)
	}

	// unknown language falls back to the id itself
	if got := l.Get("fr", ERROR_INTERNAL); got != ERROR_INTERNAL {
		t.Fatalf("unexpected fallback result: %s", got)
	}
}
