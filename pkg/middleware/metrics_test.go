package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は収集済みメトリクスから名前で検索するテスト用ヘルパー。
func findMetric(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("メトリクスの収集に失敗: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

// TestMetrics はPrometheusメトリクス収集ミドルウェアを検証する。
func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("リクエスト数がパス・メソッド・ステータス別に記録されること", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		router := gin.New()
		router.Use(Metrics(registry))
		router.GET("/api/test/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/test/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		family := findMetric(t, registry, "webinarhub_gateway_requests_total")
		if family == nil {
			t.Fatal("requests_totalメトリクスが収集されていない")
		}

		metric := family.GetMetric()[0]
		labels := map[string]string{}
		for _, l := range metric.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["path"] != "/api/test/:id" {
			t.Errorf("pathラベル = %q, want %q（生のURLを使わないこと）", labels["path"], "/api/test/:id")
		}
		if labels["method"] != http.MethodGet {
			t.Errorf("methodラベル = %q, want %q", labels["method"], http.MethodGet)
		}
		if labels["status"] != "200" {
			t.Errorf("statusラベル = %q, want %q", labels["status"], "200")
		}
		if metric.GetCounter().GetValue() != 1 {
			t.Errorf("カウンタ値 = %v, want 1", metric.GetCounter().GetValue())
		}
	})

	t.Run("ルート未登録のリクエストはpageラベルにまとめられること", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		router := gin.New()
		router.Use(Metrics(registry))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		family := findMetric(t, registry, "webinarhub_gateway_requests_total")
		if family == nil {
			t.Fatal("requests_totalメトリクスが収集されていない")
		}
		for _, l := range family.GetMetric()[0].GetLabel() {
			if l.GetName() == "path" && l.GetValue() != "page" {
				t.Errorf("pathラベル = %q, want %q", l.GetValue(), "page")
			}
		}
	})

	t.Run("レイテンシのヒストグラムが記録されること", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		router := gin.New()
		router.Use(Metrics(registry))
		router.GET("/api/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		family := findMetric(t, registry, "webinarhub_gateway_request_duration_seconds")
		if family == nil {
			t.Fatal("request_duration_secondsメトリクスが収集されていない")
		}
		if family.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
			t.Errorf("サンプル数 = %v, want 1", family.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	})
}
