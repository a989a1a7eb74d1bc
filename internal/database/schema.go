package database

// Schema is the full current schema, kept in sync with the migration
// files. Tests apply it directly instead of running migrations, which
// would record a schema version row the tests don't need.
const Schema = `
CREATE TABLE countdowns (
    id INTEGER PRIMARY KEY,
    server_id INTEGER NOT NULL,
    timezone REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE prefixes (
    id TEXT PRIMARY KEY,
    countdown_id INTEGER NOT NULL REFERENCES countdowns(id) ON DELETE CASCADE,
    value TEXT NOT NULL
);

CREATE INDEX idx_prefixes_countdown ON prefixes(countdown_id);

CREATE TABLE reactions (
    id TEXT PRIMARY KEY,
    countdown_id INTEGER NOT NULL REFERENCES countdowns(id) ON DELETE CASCADE,
    number INTEGER NOT NULL,
    value TEXT NOT NULL
);

CREATE INDEX idx_reactions_countdown_number ON reactions(countdown_id, number);

CREATE TABLE contributions (
    id INTEGER PRIMARY KEY,
    countdown_id INTEGER NOT NULL REFERENCES countdowns(id) ON DELETE CASCADE,
    author_id INTEGER NOT NULL,
    value INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX idx_contributions_countdown_id ON contributions(countdown_id, id);

CREATE TABLE operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    operation TEXT NOT NULL,
    parameters TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT ''
);
`
