// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/db"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/models"
	"github.com/google/uuid"
)

var errInvalidDeviceUUID = errors.New("X-Device-UUID must be a valid UUID")

type DeviceHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDeviceHandler(db *sql.DB, cfg cliparse.Config) *DeviceHandler {
	return &DeviceHandler{db: db, cfg: cfg}
}

// deviceUUID returns the canonical X-Device-UUID header value, or "" if absent
func deviceUUID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("X-Device-UUID"))
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errInvalidDeviceUUID
	}
	return id.String(), nil
}

// requireDeviceUUID writes a 400 and returns false when the header is missing or malformed
func requireDeviceUUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := deviceUUID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-UUID header required")
		return "", false
	}
	return id, true
}

func touchDevice(q queryer, deviceID string) {
	if _, err := q.Exec(`UPDATE device SET last_seen_at = $1 WHERE id = $2`, nowMillis(), deviceID); err != nil {
		slog.Error("failed to update device last_seen_at", "error", err)
	}
}

// Register handles POST /devices/register
// Registers a device and returns its deviceId (or finds existing)
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	devUUID, ok := requireDeviceUUID(w, r)
	if !ok {
		return
	}

	var req models.RegisterDeviceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.ValidPlatform(req.Platform) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "platform must be one of: ios, macos, android, web")
		return
	}

	deviceID, created, err := ensureDevice(h.db, devUUID, req.Platform)
	if err != nil {
		slog.Error("failed to register device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	if created {
		slog.Info("device registered (new)", "device_id", deviceID, "platform", req.Platform)
		middleware.JSONResponse(w, http.StatusCreated, models.RegisterDeviceResponse{
			DeviceID: deviceID,
			IsNew:    true,
		})
		return
	}

	// Platform may have been defaulted when the device was first seen via a vote
	_, err = h.db.Exec(`
		UPDATE device SET platform = $1, last_seen_at = $2 WHERE id = $3
	`, req.Platform, nowMillis(), deviceID)
	if err != nil {
		slog.Error("failed to update device", "error", err)
	}

	slog.Info("device registered (existing)", "device_id", deviceID)
	middleware.JSONResponse(w, http.StatusOK, models.RegisterDeviceResponse{
		DeviceID: deviceID,
		IsNew:    false,
	})
}

// GetMe handles GET /devices/me
func (h *DeviceHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	devUUID, ok := requireDeviceUUID(w, r)
	if !ok {
		return
	}

	var device models.DeviceInfo
	err := h.db.QueryRow(`
		SELECT id, platform, created_at, last_seen_at
		FROM device
		WHERE device_uuid = $1
	`, devUUID).Scan(&device.ID, &device.Platform, &device.CreatedAt, &device.LastSeenAt)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Device not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	touchDevice(h.db, device.ID)

	middleware.JSONResponse(w, http.StatusOK, device)
}

// GetMyPolls handles GET /devices/my-polls
// Returns the most recently linked polls where this device is admin or voter
func (h *DeviceHandler) GetMyPolls(w http.ResponseWriter, r *http.Request) {
	devUUID, ok := requireDeviceUUID(w, r)
	if !ok {
		return
	}

	var deviceID string
	err := h.db.QueryRow(`SELECT id FROM device WHERE device_uuid = $1`, devUUID).Scan(&deviceID)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Device not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	touchDevice(h.db, deviceID)

	rows, err := h.db.Query(`
		SELECT
			p.id,
			p.title,
			p.phase,
			dp.role,
			dp.linked_at,
			(SELECT COUNT(*) FROM ballot b WHERE b.poll_id = p.id) AS vote_count
		FROM device_poll dp
		JOIN poll p ON dp.poll_id = p.id
		WHERE dp.device_id = $1
		ORDER BY dp.linked_at DESC, p.id
		LIMIT $2
	`, deviceID, models.MyPollsLimit)

	if err != nil {
		slog.Error("failed to query device polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.DevicePollSummary{}
	for rows.Next() {
		var summary models.DevicePollSummary
		if err := rows.Scan(
			&summary.PollID,
			&summary.Title,
			&summary.Phase,
			&summary.Role,
			&summary.LinkedAt,
			&summary.VoteCount,
		); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		polls = append(polls, summary)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate device polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetMyPollsResponse{
		Polls: polls,
	})
}

func insertDevice(q queryer, devUUID, platform string) (string, error) {
	deviceID, err := auth.GenerateID(16)
	if err != nil {
		return "", err
	}

	now := nowMillis()
	_, err = q.Exec(`
		INSERT INTO device (id, device_uuid, platform, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`, deviceID, devUUID, platform, now, now)
	if err != nil {
		return "", fmt.Errorf("insert device: %w", err)
	}
	return deviceID, nil
}

// ensureDevice returns the device id for devUUID, inserting a row when none
// exists. created is false when the row was already there, including when a
// concurrent request inserted it first.
func ensureDevice(q queryer, devUUID, platform string) (deviceID string, created bool, err error) {
	err = q.QueryRow(`SELECT id FROM device WHERE device_uuid = $1`, devUUID).Scan(&deviceID)
	if err == nil {
		return deviceID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("query device: %w", err)
	}

	deviceID, err = insertDevice(q, devUUID, platform)
	if err == nil {
		return deviceID, true, nil
	}
	if !db.IsUniqueViolation(err) {
		return "", false, err
	}

	// Lost the insert race; the winner's row is now visible
	if err := q.QueryRow(`SELECT id FROM device WHERE device_uuid = $1`, devUUID).Scan(&deviceID); err != nil {
		return "", false, fmt.Errorf("query device after conflict: %w", err)
	}
	return deviceID, false, nil
}

// GetOrCreateDevice looks up or creates a device record from the X-Device-UUID header.
// Returns empty string if no header.
func GetOrCreateDevice(conn *sql.DB, r *http.Request) (string, error) {
	devUUID, err := deviceUUID(r)
	if err != nil || devUUID == "" {
		return "", err
	}

	// Actual platform is set via /devices/register
	deviceID, created, err := ensureDevice(conn, devUUID, models.PlatformWeb)
	if err != nil {
		return "", err
	}
	if !created {
		touchDevice(conn, deviceID)
	}
	return deviceID, nil
}

// LinkDeviceToPoll creates an association between a device and a poll.
// An admin link is never downgraded to voter.
func LinkDeviceToPoll(conn *sql.DB, deviceID, pollID, role string) error {
	if deviceID == "" {
		return nil
	}

	_, err := conn.Exec(`
		INSERT INTO device_poll (device_id, poll_id, role, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (device_id, poll_id) DO UPDATE SET
			role = CASE WHEN device_poll.role = 'admin' THEN 'admin' ELSE excluded.role END,
			linked_at = excluded.linked_at
	`, deviceID, pollID, role, nowMillis())

	return err
}

// linkRequestDevice links the requesting device, if any. Failures are logged only.
func linkRequestDevice(conn *sql.DB, r *http.Request, pollID, role string) {
	deviceID, err := GetOrCreateDevice(conn, r)
	if err != nil {
		slog.Warn("failed to get/create device", "error", err)
		return
	}
	if err := LinkDeviceToPoll(conn, deviceID, pollID, role); err != nil {
		slog.Warn("failed to link device to poll", "error", err)
	}
}
