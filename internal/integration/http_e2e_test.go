//go:build integration || !unit

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "pinecove/internal/adapters/http_server"
	redisad "pinecove/internal/adapters/redis"
	"pinecove/internal/app"
	mysqlrepo "pinecove/internal/storage/mysql"
)

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		t.Fatal("MIGRATIONS_DIR not set")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(raw)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=pinecove"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/pinecove?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// startAPI wires the full stack the way cmd/api does, minus rate limiting.
func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db := startMySQL(t)
	mr := miniredis.RunT(t)

	repo := mysqlrepo.New(db)
	cache := redisad.New(mr.Addr(), "", 0)
	catalog := app.NewCatalogService(repo, cache, time.Minute)
	admission := app.NewAdmissionService(catalog, repo)
	search := app.NewSearchService(catalog, repo)

	srv := server.New(nil)
	srv.MountHandlers(&server.Handlers{
		Catalog:   catalog,
		Search:    search,
		Admission: admission,
		Bookings:  repo,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// nextFriday returns a date-only Friday at least 30 days out, so the
// not-in-the-past rule never trips and the weekend pricing is deterministic.
func nextFriday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 30)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func postJSON(t *testing.T, url string, body map[string]any) (*http.Response, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestAPI_BookingFlow(t *testing.T) {
	ts := startAPI(t)

	// 1. Create a unit with weekday/weekend tariffs.
	resp, body := postJSON(t, ts.URL+"/v1/units", map[string]any{
		"name":                 "Cedar Cabin",
		"type":                 "guest_house",
		"capacity":             4,
		"count":                1,
		"extra_beds_available": 2,
		"prices": []map[string]any{
			{"weekday_type": "weekday", "price": 100, "extra_bed_price": 20},
			{"weekday_type": "weekend", "price": 150, "extra_bed_price": 25},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create unit: status %d, body %s", resp.StatusCode, body)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == 0 {
		t.Fatalf("create unit response: %s (%v)", body, err)
	}

	// Friday check-in, two nights. Both nights are priced by the following
	// day (Sat, Sun), so both are weekend: 150 + 150.
	checkIn := nextFriday()
	checkOut := checkIn.AddDate(0, 0, 2)
	ciStr, coStr := checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02")

	// 2. Search quotes the stay.
	var results []struct {
		Accommodation struct {
			ID int64 `json:"id"`
		} `json:"accommodation"`
		TotalPrice int64 `json:"total_price"`
		Nights     int   `json:"nights"`
	}
	resp = getJSON(t, fmt.Sprintf("%s/v1/search?check_in_date=%s&check_out_date=%s&guests=2", ts.URL, ciStr, coStr), &results)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	if len(results) != 1 || results[0].Accommodation.ID != created.ID {
		t.Fatalf("unexpected search results: %+v", results)
	}
	if results[0].TotalPrice != 300 || results[0].Nights != 2 {
		t.Fatalf("unexpected quote: %+v", results[0])
	}

	// 3. Book at the quoted total.
	bookingBody := map[string]any{
		"accommodation_id": created.ID,
		"check_in_date":    ciStr,
		"check_out_date":   coStr,
		"guests":           2,
		"guest_name":       "Anna Petrova",
		"guest_phone":      "+7 921 555 01 01",
		"guest_email":      "anna@example.com",
		"total_price":      300,
	}
	resp, body = postJSON(t, ts.URL+"/v1/bookings", bookingBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create booking: status %d, body %s", resp.StatusCode, body)
	}
	var booked struct {
		ID         int64 `json:"id"`
		TotalPrice int64 `json:"total_price"`
	}
	if err := json.Unmarshal(body, &booked); err != nil || booked.ID == 0 {
		t.Fatalf("booking response: %s (%v)", body, err)
	}
	if booked.TotalPrice != 300 {
		t.Fatalf("booked total = %d, want 300", booked.TotalPrice)
	}

	// 4. The same window is now taken.
	resp, body = postJSON(t, ts.URL+"/v1/bookings", bookingBody)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double booking: status %d, body %s", resp.StatusCode, body)
	}

	// 5. A stale quote for a free window is rejected without persisting.
	laterIn := checkIn.AddDate(0, 0, 14)
	laterOut := laterIn.AddDate(0, 0, 2)
	stale := map[string]any{
		"accommodation_id": created.ID,
		"check_in_date":    laterIn.Format("2006-01-02"),
		"check_out_date":   laterOut.Format("2006-01-02"),
		"guests":           2,
		"guest_name":       "Anna Petrova",
		"guest_phone":      "+7 921 555 01 01",
		"guest_email":      "anna@example.com",
		"total_price":      299,
	}
	resp, body = postJSON(t, ts.URL+"/v1/bookings", stale)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stale quote: status %d, body %s", resp.StatusCode, body)
	}

	// 6. The stored booking reads back; only one exists.
	var fetched struct {
		ID          int64  `json:"id"`
		CheckInDate string `json:"check_in_date"`
	}
	resp = getJSON(t, fmt.Sprintf("%s/v1/bookings/%d", ts.URL, booked.ID), &fetched)
	if resp.StatusCode != http.StatusOK || fetched.CheckInDate != ciStr {
		t.Fatalf("get booking: status %d, %+v", resp.StatusCode, fetched)
	}
	var all []json.RawMessage
	resp = getJSON(t, ts.URL+"/v1/bookings", &all)
	if resp.StatusCode != http.StatusOK || len(all) != 1 {
		t.Fatalf("list bookings: status %d, %d entries", resp.StatusCode, len(all))
	}

	// 7. The occupied unit drops out of search for the same window.
	resp = getJSON(t, fmt.Sprintf("%s/v1/search?check_in_date=%s&check_out_date=%s&guests=2", ts.URL, ciStr, coStr), &results)
	if resp.StatusCode != http.StatusOK || len(results) != 0 {
		t.Fatalf("post-booking search: status %d, %+v", resp.StatusCode, results)
	}
}

func TestAPI_CatalogETag(t *testing.T) {
	ts := startAPI(t)

	resp, body := postJSON(t, ts.URL+"/v1/units", map[string]any{
		"name":     "Lakeside Gazebo",
		"type":     "gazebo",
		"capacity": 8,
		"count":    3,
		"prices": []map[string]any{
			{"weekday_type": "weekday", "price": 50},
			{"weekday_type": "weekend", "price": 80},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create unit: status %d, body %s", resp.StatusCode, body)
	}

	first, err := http.Get(ts.URL + "/v1/units")
	if err != nil {
		t.Fatalf("GET units: %v", err)
	}
	_, _ = io.Copy(io.Discard, first.Body)
	first.Body.Close()
	etag := first.Header.Get("ETag")
	if first.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("first GET: status %d, etag %q", first.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/units", nil)
	req.Header.Set("If-None-Match", etag)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	_, _ = io.Copy(io.Discard, second.Body)
	second.Body.Close()
	if second.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional GET: status %d, want 304", second.StatusCode)
	}
}
