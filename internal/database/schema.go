package database

// The two schema variants only differ in key generation and column types;
// queries elsewhere stick to the portable subset both drivers accept.
var schemas = map[string]string{
	DriverSQLite: schemaSQLite,
	DriverMySQL:  schemaMySQL,
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    interval_days INTEGER NOT NULL DEFAULT 0,
    repetition_count INTEGER NOT NULL DEFAULT 0,
    easiness_factor REAL NOT NULL DEFAULT 2.5,
    due_at DATETIME NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_user_due ON cards(user_id, due_at);

CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    quality INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    easiness_factor REAL NOT NULL,
    reviewed_at DATETIME NOT NULL,
    FOREIGN KEY(card_id) REFERENCES cards(id)
);
CREATE INDEX IF NOT EXISTS idx_review_logs_user ON review_logs(user_id, reviewed_at);

CREATE TABLE IF NOT EXISTS activity_states (
    user_id TEXT PRIMARY KEY,
    last_active_at DATETIME NOT NULL,
    streak_count INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    horizon_days INTEGER NOT NULL,
    due_count INTEGER NOT NULL,
    captured_at DATETIME NOT NULL
);
`

const schemaMySQL = `
CREATE TABLE IF NOT EXISTS cards (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    user_id VARCHAR(64) NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    interval_days INT NOT NULL DEFAULT 0,
    repetition_count INT NOT NULL DEFAULT 0,
    easiness_factor DOUBLE NOT NULL DEFAULT 2.5,
    due_at DATETIME NOT NULL,
    version INT NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    INDEX idx_cards_user_due (user_id, due_at)
);

CREATE TABLE IF NOT EXISTS review_logs (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    card_id BIGINT NOT NULL,
    user_id VARCHAR(64) NOT NULL,
    quality INT NOT NULL,
    interval_days INT NOT NULL,
    easiness_factor DOUBLE NOT NULL,
    reviewed_at DATETIME NOT NULL,
    INDEX idx_review_logs_user (user_id, reviewed_at)
);

CREATE TABLE IF NOT EXISTS activity_states (
    user_id VARCHAR(64) PRIMARY KEY,
    last_active_at DATETIME NOT NULL,
    streak_count INT NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_snapshots (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    user_id VARCHAR(64) NOT NULL,
    horizon_days INT NOT NULL,
    due_count INT NOT NULL,
    captured_at DATETIME NOT NULL
);
`
