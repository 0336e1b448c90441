// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/testutil"
)

const (
	testDeviceUUID  = "0b9f3c52-8f62-4d2b-9a57-3f1d6c7e8a90"
	otherDeviceUUID = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
)

// createTestDevice inserts a device row directly and returns its ID
func createTestDevice(t *testing.T, db *sql.DB, devUUID, platform string) string {
	t.Helper()

	deviceID, _ := auth.GenerateID(16)
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO device (id, device_uuid, platform, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`, deviceID, devUUID, platform, now, now)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}
	return deviceID
}

func deviceHeaders(devUUID string) map[string]string {
	if devUUID == "" {
		return nil
	}
	return map[string]string{"X-Device-UUID": devUUID}
}

func TestDeviceRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDeviceHandler(db, cfg)

	existingID := createTestDevice(t, db, otherDeviceUUID, models.PlatformWeb)

	tests := []struct {
		name           string
		deviceUUID     string
		requestBody    any
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.RegisterDeviceResponse)
	}{
		{
			name:           "new device registration",
			deviceUUID:     testDeviceUUID,
			requestBody:    models.RegisterDeviceRequest{Platform: "ios"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.RegisterDeviceResponse) {
				if resp.DeviceID == "" || !resp.IsNew {
					t.Fatalf("Expected a new device, got %+v", resp)
				}
				var platform string
				err := db.QueryRow("SELECT platform FROM device WHERE id = $1", resp.DeviceID).Scan(&platform)
				if err != nil {
					t.Fatalf("Failed to query device: %v", err)
				}
				if platform != "ios" {
					t.Errorf("Expected platform 'ios', got '%s'", platform)
				}
			},
		},
		{
			name:           "existing device updates platform",
			deviceUUID:     otherDeviceUUID,
			requestBody:    models.RegisterDeviceRequest{Platform: "android"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RegisterDeviceResponse) {
				if resp.DeviceID != existingID || resp.IsNew {
					t.Fatalf("Expected existing device %s, got %+v", existingID, resp)
				}
				var platform string
				if err := db.QueryRow("SELECT platform FROM device WHERE id = $1", existingID).Scan(&platform); err != nil {
					t.Fatal(err)
				}
				if platform != "android" {
					t.Errorf("Expected platform 'android', got '%s'", platform)
				}
			},
		},
		{
			name:           "uppercase UUID maps to the same device",
			deviceUUID:     "C1D2E3F4-A5B6-4C7D-8E9F-0A1B2C3D4E5F",
			requestBody:    models.RegisterDeviceRequest{Platform: "macos"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RegisterDeviceResponse) {
				if resp.DeviceID != existingID {
					t.Errorf("Expected %s, got %s", existingID, resp.DeviceID)
				}
			},
		},
		{
			name:           "missing X-Device-UUID header",
			requestBody:    models.RegisterDeviceRequest{Platform: "ios"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed X-Device-UUID header",
			deviceUUID:     "not-a-uuid",
			requestBody:    models.RegisterDeviceRequest{Platform: "ios"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid platform",
			deviceUUID:     testDeviceUUID,
			requestBody:    models.RegisterDeviceRequest{Platform: "windows"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			deviceUUID:     testDeviceUUID,
			requestBody:    "platform",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/devices/register", tt.requestBody, deviceHeaders(tt.deviceUUID))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == tt.expectedStatus {
				var resp models.RegisterDeviceResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM device").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Expected 2 devices, got %d", n)
	}
}

func TestDeviceGetMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDeviceHandler(db, cfg)

	deviceID := createTestDevice(t, db, testDeviceUUID, "macos")

	tests := []struct {
		name           string
		deviceUUID     string
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.DeviceInfo)
	}{
		{
			name:           "get existing device",
			deviceUUID:     testDeviceUUID,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.DeviceInfo) {
				if resp.ID != deviceID {
					t.Errorf("Expected device ID '%s', got '%s'", deviceID, resp.ID)
				}
				if resp.Platform != "macos" {
					t.Errorf("Expected platform 'macos', got '%s'", resp.Platform)
				}
				if resp.CreatedAt == 0 || resp.LastSeenAt < resp.CreatedAt {
					t.Errorf("Unexpected timestamps %d/%d", resp.CreatedAt, resp.LastSeenAt)
				}
			},
		},
		{
			name:           "device not found",
			deviceUUID:     otherDeviceUUID,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/devices/me", nil, deviceHeaders(tt.deviceUUID))
			w := httptest.NewRecorder()

			handler.GetMe(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == tt.expectedStatus {
				var resp models.DeviceInfo
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestDeviceGetMyPolls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDeviceHandler(db, cfg)

	deviceID := createTestDevice(t, db, testDeviceUUID, "ios")
	createTestDevice(t, db, otherDeviceUUID, "web")

	adminPoll, _ := testutil.CreateTestPoll(t, db, cfg, models.PhaseNominating, "movie", "borda")
	voterPoll, _ := testutil.CreateTestPoll(t, db, cfg, models.PhaseVoting, "other", "rcv")
	c := testutil.AddTestCandidate(t, db, voterPoll, "Tacos")
	testutil.SubmitTestVote(t, db, cfg, voterPoll, "k1", "Amy", []string{c})
	testutil.SubmitTestVote(t, db, cfg, voterPoll, "k2", "Ben", []string{c})

	if err := LinkDeviceToPoll(db, deviceID, adminPoll, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := LinkDeviceToPoll(db, deviceID, voterPoll, models.RoleVoter); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		deviceUUID     string
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.GetMyPollsResponse)
	}{
		{
			name:           "get polls for device",
			deviceUUID:     testDeviceUUID,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.GetMyPollsResponse) {
				if len(resp.Polls) != 2 {
					t.Fatalf("Expected 2 polls, got %d", len(resp.Polls))
				}

				foundAdmin, foundVoter := false, false
				for _, p := range resp.Polls {
					switch p.PollID {
					case adminPoll:
						foundAdmin = p.Role == models.RoleAdmin && p.Phase == models.PhaseNominating
					case voterPoll:
						foundVoter = p.Role == models.RoleVoter && p.VoteCount == 2
					}
				}
				if !foundAdmin {
					t.Error("Expected to find admin poll")
				}
				if !foundVoter {
					t.Error("Expected to find voter poll with 2 votes")
				}
			},
		},
		{
			name:           "registered device with no polls",
			deviceUUID:     otherDeviceUUID,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.GetMyPollsResponse) {
				if resp.Polls == nil || len(resp.Polls) != 0 {
					t.Errorf("Expected empty list, got %v", resp.Polls)
				}
			},
		},
		{
			name:           "device not found",
			deviceUUID:     "e2a4b0c6-1111-4222-8333-944455556666",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/devices/my-polls", nil, deviceHeaders(tt.deviceUUID))
			w := httptest.NewRecorder()

			handler.GetMyPolls(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == tt.expectedStatus {
				var resp models.GetMyPollsResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestDeviceGetMyPolls_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDeviceHandler(db, cfg)

	deviceID := createTestDevice(t, db, testDeviceUUID, "web")

	var last string
	for i := 0; i < models.MyPollsLimit+5; i++ {
		pollID, _ := testutil.CreateTestPoll(t, db, cfg, models.PhaseNominating, "other", "borda")
		_, err := db.Exec(`
			INSERT INTO device_poll (device_id, poll_id, role, linked_at)
			VALUES ($1, $2, $3, $4)
		`, deviceID, pollID, models.RoleVoter, int64(1000+i))
		if err != nil {
			t.Fatalf("Failed to link poll %d: %v", i, err)
		}
		last = pollID
	}

	req := testutil.MakeRequest("GET", "/devices/my-polls", nil, deviceHeaders(testDeviceUUID))
	w := httptest.NewRecorder()
	handler.GetMyPolls(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.GetMyPollsResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Polls) != models.MyPollsLimit {
		t.Fatalf("Expected %d polls, got %d", models.MyPollsLimit, len(resp.Polls))
	}
	if resp.Polls[0].PollID != last {
		t.Errorf("Expected most recently linked poll first")
	}
	for i := 1; i < len(resp.Polls); i++ {
		if resp.Polls[i].LinkedAt > resp.Polls[i-1].LinkedAt {
			t.Fatalf("Polls not ordered by linkedAt at index %d", i)
		}
	}
}

func TestGetOrCreateDevice(t *testing.T) {
	db := testutil.SetupTestDB(t)

	req := httptest.NewRequest("GET", "/test", nil)
	deviceID, err := GetOrCreateDevice(db, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deviceID != "" {
		t.Error("Expected empty device ID when no header")
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Device-UUID", testDeviceUUID)
	deviceID, err = GetOrCreateDevice(db, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deviceID == "" {
		t.Fatal("Expected non-empty device ID")
	}

	var platform string
	if err := db.QueryRow("SELECT platform FROM device WHERE id = $1", deviceID).Scan(&platform); err != nil {
		t.Fatalf("Failed to query device: %v", err)
	}
	if platform != models.PlatformWeb {
		t.Errorf("Expected platform 'web', got '%s'", platform)
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Device-UUID", testDeviceUUID)
	deviceID2, err := GetOrCreateDevice(db, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deviceID2 != deviceID {
		t.Error("Expected same device ID for same UUID")
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Device-UUID", "garbage")
	if _, err := GetOrCreateDevice(db, req); err == nil {
		t.Error("Expected error for malformed UUID")
	}
}

// insertRaceQueryer inserts a competing device row just before the first
// device INSERT it forwards, reproducing two requests racing on one UUID
type insertRaceQueryer struct {
	queryer
	compete func()
	fired   bool
}

func (q *insertRaceQueryer) Exec(query string, args ...any) (sql.Result, error) {
	if !q.fired && strings.Contains(query, "INSERT INTO device ") {
		q.fired = true
		q.compete()
	}
	return q.queryer.Exec(query, args...)
}

func TestEnsureDevice_InsertRace(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var winnerID string
	q := &insertRaceQueryer{
		queryer: db,
		compete: func() { winnerID = createTestDevice(t, db, testDeviceUUID, "ios") },
	}

	deviceID, created, err := ensureDevice(q, testDeviceUUID, models.PlatformWeb)
	if err != nil {
		t.Fatalf("Expected lost race to resolve to the existing row, got %v", err)
	}
	if !q.fired {
		t.Fatal("Expected the insert path to run")
	}
	if created {
		t.Error("Expected created=false after losing the insert race")
	}
	if deviceID != winnerID {
		t.Errorf("Expected winner's device ID %s, got %s", winnerID, deviceID)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM device WHERE device_uuid = $1", testDeviceUUID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 device row, got %d", n)
	}
}

func TestLinkDeviceToPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	deviceID := createTestDevice(t, db, testDeviceUUID, "ios")
	pollID, _ := testutil.CreateTestPoll(t, db, cfg, models.PhaseVoting, "movie", "borda")

	roleOf := func() string {
		t.Helper()
		var role string
		err := db.QueryRow("SELECT role FROM device_poll WHERE device_id = $1 AND poll_id = $2", deviceID, pollID).Scan(&role)
		if err != nil {
			t.Fatalf("Failed to query device_poll: %v", err)
		}
		return role
	}

	if err := LinkDeviceToPoll(db, deviceID, pollID, models.RoleVoter); err != nil {
		t.Fatalf("Failed to link device as voter: %v", err)
	}
	if role := roleOf(); role != models.RoleVoter {
		t.Errorf("Expected role 'voter', got '%s'", role)
	}

	if err := LinkDeviceToPoll(db, deviceID, pollID, models.RoleAdmin); err != nil {
		t.Fatalf("Failed to upgrade link: %v", err)
	}
	if role := roleOf(); role != models.RoleAdmin {
		t.Errorf("Expected role 'admin', got '%s'", role)
	}

	// Voting from an admin device must not downgrade the link
	if err := LinkDeviceToPoll(db, deviceID, pollID, models.RoleVoter); err != nil {
		t.Fatalf("Failed to re-link device: %v", err)
	}
	if role := roleOf(); role != models.RoleAdmin {
		t.Errorf("Expected role to remain 'admin', got '%s'", role)
	}

	if err := LinkDeviceToPoll(db, "", pollID, models.RoleVoter); err != nil {
		t.Errorf("Expected no error for empty deviceID, got %v", err)
	}
}
