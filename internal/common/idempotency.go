package common

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	idemLocked      = "locked"
	idemDefaultTTL  = 24 * time.Hour
	idemHeader      = "Idempotency-Key"
	idemReplayedHdr = "Idempotent-Replayed"
)

// Idem provides an Idempotency-Key middleware backed by Redis. Completed
// responses are stored and replayed for repeated keys; a key whose first
// request is still running is rejected with 409, and a key reused with a
// different body is rejected with 422.
type Idem struct {
	R      *redis.Client
	TTL    time.Duration
	Prefix string
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	RequestHash string `json:"requestHash"`
}

func (i Idem) key(r *http.Request, header string) string {
	scope := r.Method + " " + r.URL.Path + " " + header
	if uid, ok := UserID(r.Context()); ok {
		scope += " " + uid
	}
	sum := sha256.Sum256([]byte(scope))
	prefix := i.Prefix
	if prefix == "" {
		prefix = "idem:"
	}
	return prefix + hex.EncodeToString(sum[:])
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return idemDefaultTTL
	}
	return i.TTL
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(idemHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		payload, err := readBody(r)
		if err != nil {
			JSONError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body", nil)
			return
		}
		requestHash := digest(payload)

		ctx := r.Context()
		key := i.key(r, header)
		ok, err := i.R.SetNX(ctx, key, idemLocked, i.ttl()).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, CodeInternal, "idempotency store error", nil)
			return
		}
		if !ok {
			if stored, found := i.lookup(ctx, key); found {
				if stored.RequestHash != requestHash {
					JSONError(w, http.StatusUnprocessableEntity, CodeIdempotencyReuse, "idempotency key was used with a different request body", nil)
					return
				}
				replay(w, stored)
				return
			}
			JSONError(w, http.StatusConflict, CodeIdempotentReplay, "duplicate request still in progress", nil)
			return
		}

		rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		completed := false
		defer func() {
			// release the lock if the handler panicked
			if !completed {
				_ = i.R.Del(context.Background(), key).Err()
			}
		}()
		next.ServeHTTP(rec, r)
		completed = true

		if rec.status >= http.StatusInternalServerError {
			_ = i.R.Del(context.Background(), key).Err()
			return
		}
		record, err := json.Marshal(storedResponse{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			RequestHash: requestHash,
		})
		if err != nil {
			_ = i.R.Del(context.Background(), key).Err()
			return
		}
		_ = i.R.Set(context.Background(), key, record, i.ttl()).Err()
	})
}

func (i Idem) lookup(ctx context.Context, key string) (storedResponse, bool) {
	val, err := i.R.Get(ctx, key).Result()
	if err != nil || val == idemLocked {
		return storedResponse{}, false
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return storedResponse{}, false
	}
	return stored, true
}

// readBody drains the request body and puts an identical copy back.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, stored storedResponse) {
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(idemReplayedHdr, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}
