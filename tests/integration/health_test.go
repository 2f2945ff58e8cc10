package integration

import (
	"net/http"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	services := []struct {
		name string
		port int
	}{
		{"storefront", storefrontPort},
		{"notifier", notifierPort},
	}

	for _, svc := range services {
		t.Run(svc.name, func(t *testing.T) {
			skipIfNotRunning(t, svc.port)

			client := &http.Client{}
			for _, path := range []string{"/health/live", "/health/ready"} {
				resp, err := client.Get(baseURL(svc.port) + path)
				if err != nil {
					t.Fatalf("GET %s: %v", path, err)
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					t.Errorf("%s returned %d, want 200", path, resp.StatusCode)
				}
			}
		})
	}
}
