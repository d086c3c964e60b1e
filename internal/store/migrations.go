package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS topics (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT 'Other',
	date_added  DATETIME NOT NULL,
	mastery     INTEGER NOT NULL DEFAULT 0 CHECK(mastery BETWEEN 0 AND 100),
	notes       TEXT,
	sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS flashcards (
	id            TEXT PRIMARY KEY,
	topic_id      TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
	question      TEXT NOT NULL,
	answer        TEXT NOT NULL,
	ease_factor   REAL NOT NULL DEFAULT 2.5 CHECK(ease_factor >= 1.3),
	interval_days INTEGER NOT NULL DEFAULT 0 CHECK(interval_days >= 0),
	repetitions   INTEGER NOT NULL DEFAULT 0 CHECK(repetitions >= 0),
	next_review   DATETIME NOT NULL,
	last_review   DATETIME,
	sort_order    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category);
CREATE INDEX IF NOT EXISTS idx_flashcards_topic_id ON flashcards(topic_id);
CREATE INDEX IF NOT EXISTS idx_flashcards_next_review ON flashcards(next_review);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS review_log (
	id          TEXT PRIMARY KEY,
	card_id     TEXT NOT NULL REFERENCES flashcards(id) ON DELETE CASCADE,
	quality     INTEGER NOT NULL CHECK(quality BETWEEN 0 AND 5),
	reviewed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_log_card_id ON review_log(card_id);
CREATE INDEX IF NOT EXISTS idx_review_log_reviewed_at ON review_log(reviewed_at);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
