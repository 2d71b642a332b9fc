package mysql

const createTableSQL = `
CREATE TABLE IF NOT EXISTS onboarding_sessions (
  id              VARCHAR(36)  NOT NULL,
  hotel_id        VARCHAR(64)  NOT NULL,
  owner_id        VARCHAR(64)  NOT NULL,
  status          VARCHAR(16)  NOT NULL,
  draft           JSON         NOT NULL,
  completed_steps JSON         NOT NULL,
  quality_score   DOUBLE       NOT NULL DEFAULT 0,
  version         BIGINT       NOT NULL DEFAULT 0,
  created_at      TIMESTAMP    NOT NULL,
  expires_at      TIMESTAMP    NOT NULL,
  PRIMARY KEY (id),
  KEY idx_status_expiry (status, expires_at)
)
`

const insertSessionSQL = `
INSERT INTO onboarding_sessions
  (id, hotel_id, owner_id, status, draft, completed_steps, quality_score, version, created_at, expires_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getSessionSQL = `
SELECT id, hotel_id, owner_id, status, draft, completed_steps, quality_score, version, created_at, expires_at
FROM onboarding_sessions
WHERE id = ?
`

// CAS update: the WHERE clause on version makes concurrent writers lose
// cleanly instead of clobbering each other.
const updateSessionSQL = `
UPDATE onboarding_sessions
SET status = ?, draft = ?, completed_steps = ?, quality_score = ?, version = version + 1, expires_at = ?
WHERE id = ? AND version = ?
`

const listExpiredSQL = `
SELECT id, hotel_id, owner_id, status, draft, completed_steps, quality_score, version, created_at, expires_at
FROM onboarding_sessions
WHERE status = 'ACTIVE' AND expires_at < ?
ORDER BY expires_at
LIMIT ?
`
