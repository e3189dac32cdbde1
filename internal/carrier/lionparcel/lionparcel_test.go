package lionparcel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:   server.URL,
		AuthToken: "dGVzdDp0ZXN0",
		Origin:    "CGK10000",
		Commodity: "GEN",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestGetTariff(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/tariffv3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Basic dGVzdDp0ZXN0" {
			t.Errorf("auth header = %q", got)
		}
		if got := r.URL.Query().Get("weight"); got != "2" {
			t.Errorf("weight = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"weight":2,"destination":"BDG10000","result":[
			{"product":"REGPACK","total_tariff":18000,"is_embargo":false,"estimated_sla":"2 - 3"},
			{"product":"ONEPACK","total_tariff":30000,"is_embargo":true,"estimated_sla":"1 - 1"}
		]}}`))
	}))

	result, err := client.GetTariff(context.Background(), TariffRequest{
		Destination: "BDG10000",
		WeightKG:    2,
	})
	if err != nil {
		t.Fatalf("GetTariff: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(result.Entries))
	}
	if result.Entries[0].ProductCode != "REGPACK" || result.Entries[0].TotalTariff != 18000 {
		t.Fatalf("unexpected first entry: %+v", result.Entries[0])
	}
	if !result.Entries[1].IsEmbargo {
		t.Fatalf("second entry should be embargoed")
	}
}

func TestGetTariffTransportFailure(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.GetTariff(context.Background(), TariffRequest{Destination: "BDG10000", WeightKG: 1})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
}

func TestGetTariffMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"result":[]}}`))
	}))

	_, err := client.GetTariff(context.Background(), TariffRequest{Destination: "BDG10000", WeightKG: 1})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("err = %v, want ErrResponseInvalid", err)
	}
}

func TestCreateBooking(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/client/booking" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"success":true,"stt":[{"stt_no":"99LP123456"}]}}`))
	}))

	result, err := client.CreateBooking(context.Background(), BookingRequest{
		OrderNo:       "TG20260830ABC123",
		GoodsValue:    90000,
		Destination:   "BDG10000",
		RecipientName: "Budi",
		ProductType:   "REGPACK",
		Pieces:        []BookingPiece{{Quantity: 1, WeightGram: 500}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if result.STTNo != "99LP123456" {
		t.Fatalf("stt_no = %q", result.STTNo)
	}
}

func TestCreateBookingRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"success":false,"stt":[]}}`))
	}))

	_, err := client.CreateBooking(context.Background(), BookingRequest{
		Destination: "BDG10000",
		ProductType: "REGPACK",
		Pieces:      []BookingPiece{{Quantity: 1, WeightGram: 500}},
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("err = %v, want ErrResponseInvalid", err)
	}
}

func TestTrack(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "99LP123456" {
			t.Errorf("q = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"stt_no":"99LP123456","current_status":"POD","city":"Bandung"}}`))
	}))

	result, err := client.Track(context.Background(), "99LP123456")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if result.CurrentStatus != StatusPOD {
		t.Fatalf("current_status = %q, want POD", result.CurrentStatus)
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want ErrConfigInvalid", err)
	}
}
