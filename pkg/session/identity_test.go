package session

import (
	"testing"
	"time"
)

// TestResolve はクッキー値からのIdentity導出をテストする。
func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンから認証済みIdentityを導出する", func(t *testing.T) {
		t.Parallel()

		token, err := Sign(testSecret, "bob@example.com", 0, time.Hour)
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		identity, ok := Resolve(testSecret, token, time.Now())
		if !ok {
			t.Fatal("有効なトークンが匿名と判定された")
		}
		if identity.Email != "bob@example.com" {
			t.Errorf("email: got %q, want %q", identity.Email, "bob@example.com")
		}
		if identity.Admin {
			t.Error("admin=0のトークンが管理者と判定された")
		}
		if identity.Token != token {
			t.Error("Identityが生のトークンを保持していない")
		}
	})

	t.Run("クッキーが無い場合は匿名になる", func(t *testing.T) {
		t.Parallel()

		if _, ok := Resolve(testSecret, "", time.Now()); ok {
			t.Error("空のクッキー値が認証済みと判定された")
		}
	})

	t.Run("空白だけのクッキー値も匿名になる", func(t *testing.T) {
		t.Parallel()

		if _, ok := Resolve(testSecret, "   ", time.Now()); ok {
			t.Error("空白のクッキー値が認証済みと判定された")
		}
	})

	t.Run("期限切れトークンはクッキー無しと区別できない", func(t *testing.T) {
		t.Parallel()

		token, err := Sign(testSecret, "bob@example.com", 0, time.Hour)
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		expired, okExpired := Resolve(testSecret, token, time.Now().Add(2*time.Hour))
		absent, okAbsent := Resolve(testSecret, "", time.Now())

		if okExpired || okAbsent {
			t.Fatal("無効なトークンが認証済みと判定された")
		}
		if expired != absent {
			t.Error("期限切れトークンとクッキー無しの結果が一致しない")
		}
	})

	t.Run("同じ入力と時刻なら常に同じ結果を返す", func(t *testing.T) {
		t.Parallel()

		token, err := Sign(testSecret, "carol@example.com", 1, time.Hour)
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		now := time.Now()
		first, okFirst := Resolve(testSecret, token, now)
		second, okSecond := Resolve(testSecret, token, now)

		if okFirst != okSecond || first != second {
			t.Error("同じ入力に対するResolveの結果が一致しない")
		}
	})
}
