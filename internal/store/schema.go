package store

// CurrentSchemaVersion is the schema version this code understands.
// Opening a store whose stored version differs is a fatal error; tt
// never migrates a schema implicitly.
const CurrentSchemaVersion = 1

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS streams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		time_direct_ms INTEGER NOT NULL DEFAULT 0,
		time_delegated_ms INTEGER NOT NULL DEFAULT 0,
		first_event_at INTEGER,
		last_event_at INTEGER,
		needs_recompute INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		timestamp_ms INTEGER NOT NULL,
		type TEXT NOT NULL,
		source TEXT NOT NULL,
		schema_version INTEGER NOT NULL DEFAULT 1,
		cwd TEXT,
		git_project TEXT,
		git_workspace TEXT,
		pane_id TEXT,
		tmux_session TEXT,
		window_index INTEGER,
		window_app_hint TEXT,
		status TEXT,
		idle_duration_ms INTEGER,
		action TEXT,
		session_id TEXT,
		parent_session_id TEXT,
		session_type TEXT,
		stream_id TEXT REFERENCES streams(id),
		assignment_source TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stream_tags (
		stream_id TEXT NOT NULL REFERENCES streams(id),
		tag TEXT NOT NULL,
		PRIMARY KEY (stream_id, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS agent_sessions (
		session_id TEXT PRIMARY KEY,
		first_tool_use_at INTEGER NOT NULL,
		last_tool_use_at INTEGER NOT NULL,
		ended INTEGER NOT NULL DEFAULT 0,
		parent_session_id TEXT,
		type TEXT NOT NULL DEFAULT 'agent',
		project_path TEXT,
		stream_id TEXT REFERENCES streams(id)
	)`,
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_events_stream ON events(stream_id, timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_events_stream_null ON events(timestamp_ms) WHERE stream_id IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_streams_needs_recompute ON streams(needs_recompute)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_sessions_stream ON agent_sessions(stream_id)`,
}
