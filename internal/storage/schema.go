package storage

// The traffic unique index is an expression index so the sitewide row
// (NULL location_id) still conflicts with itself.

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    short_name TEXT NOT NULL DEFAULT '',
    latitude REAL NOT NULL DEFAULT 0,
    longitude REAL NOT NULL DEFAULT 0,
    radius_miles REAL NOT NULL DEFAULT 0,
    market_character TEXT NOT NULL DEFAULT '',
    gbp_location_id TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS keywords (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT NOT NULL,
    location_id INTEGER NOT NULL REFERENCES locations(id),
    category TEXT NOT NULL CHECK (category IN ('medicaid-planning', 'estate-planning', 'asset-protection', 'guardianship', 'elder-law-general', 'long-term-care', 'veterans-benefits', 'trust-administration', 'probate', 'special-needs')),
    is_primary INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    target_position INTEGER,
    monthly_search_volume INTEGER,
    UNIQUE (keyword, location_id)
);

CREATE TABLE IF NOT EXISTS keyword_rankings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword_id INTEGER NOT NULL REFERENCES keywords(id),
    location_id INTEGER NOT NULL REFERENCES locations(id),
    recorded_date TEXT NOT NULL,
    position INTEGER,
    previous_position INTEGER,
    url TEXT,
    local_pack_position INTEGER,
    featured_snippet INTEGER NOT NULL DEFAULT 0,
    UNIQUE (keyword_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS competitors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    domain TEXT NOT NULL,
    location_id INTEGER NOT NULL REFERENCES locations(id),
    is_active INTEGER NOT NULL DEFAULT 1,
    UNIQUE (location_id, domain)
);

CREATE TABLE IF NOT EXISTS competitor_rankings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    competitor_id INTEGER NOT NULL REFERENCES competitors(id),
    keyword_id INTEGER NOT NULL REFERENCES keywords(id),
    recorded_date TEXT NOT NULL,
    position INTEGER,
    url TEXT,
    local_pack_position INTEGER,
    UNIQUE (competitor_id, keyword_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS traffic_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_date TEXT NOT NULL,
    location_id INTEGER REFERENCES locations(id),
    pageviews INTEGER NOT NULL DEFAULT 0,
    visits INTEGER NOT NULL DEFAULT 0,
    unique_visitors INTEGER NOT NULL DEFAULT 0,
    avg_duration REAL,
    bounce_rate REAL,
    top_pages TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_traffic_date_location
    ON traffic_data (recorded_date, (COALESCE(location_id, 0)));

CREATE TABLE IF NOT EXISTS gbp_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location_id INTEGER NOT NULL REFERENCES locations(id),
    recorded_date TEXT NOT NULL,
    searches_direct INTEGER NOT NULL DEFAULT 0,
    searches_discovery INTEGER NOT NULL DEFAULT 0,
    searches_total INTEGER NOT NULL DEFAULT 0,
    actions_website INTEGER NOT NULL DEFAULT 0,
    actions_phone INTEGER NOT NULL DEFAULT 0,
    actions_directions INTEGER NOT NULL DEFAULT 0,
    actions_total INTEGER NOT NULL DEFAULT 0,
    UNIQUE (location_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS search_console_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_date TEXT NOT NULL,
    query TEXT NOT NULL,
    page TEXT NOT NULL,
    location_id INTEGER REFERENCES locations(id),
    clicks INTEGER NOT NULL DEFAULT 0,
    impressions INTEGER NOT NULL DEFAULT 0,
    ctr REAL NOT NULL DEFAULT 0,
    position REAL NOT NULL DEFAULT 0,
    UNIQUE (recorded_date, query, page)
);

CREATE TABLE IF NOT EXISTS content_pieces (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    url TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('blog', 'service-page', 'video', 'resource')),
    location_id INTEGER REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS video_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_id INTEGER REFERENCES content_pieces(id),
    platform TEXT NOT NULL CHECK (platform IN ('youtube', 'bunny')),
    external_id TEXT NOT NULL,
    recorded_date TEXT NOT NULL,
    views INTEGER NOT NULL DEFAULT 0,
    likes INTEGER NOT NULL DEFAULT 0,
    comments INTEGER NOT NULL DEFAULT 0,
    avg_view_duration REAL,
    UNIQUE (external_id, platform, recorded_date)
);

CREATE INDEX IF NOT EXISTS idx_keywords_active ON keywords(is_active);
CREATE INDEX IF NOT EXISTS idx_rankings_keyword_date ON keyword_rankings(keyword_id, recorded_date);
CREATE INDEX IF NOT EXISTS idx_search_console_date ON search_console_data(recorded_date);
`

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS locations (
    id BIGSERIAL PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    short_name TEXT NOT NULL DEFAULT '',
    latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    radius_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
    market_character TEXT NOT NULL DEFAULT '',
    gbp_location_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS keywords (
    id BIGSERIAL PRIMARY KEY,
    keyword TEXT NOT NULL,
    location_id BIGINT NOT NULL REFERENCES locations(id),
    category TEXT NOT NULL CHECK (category IN ('medicaid-planning', 'estate-planning', 'asset-protection', 'guardianship', 'elder-law-general', 'long-term-care', 'veterans-benefits', 'trust-administration', 'probate', 'special-needs')),
    is_primary BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    target_position INTEGER,
    monthly_search_volume INTEGER,
    UNIQUE (keyword, location_id)
);

CREATE TABLE IF NOT EXISTS keyword_rankings (
    id BIGSERIAL PRIMARY KEY,
    keyword_id BIGINT NOT NULL REFERENCES keywords(id),
    location_id BIGINT NOT NULL REFERENCES locations(id),
    recorded_date DATE NOT NULL,
    position INTEGER,
    previous_position INTEGER,
    url TEXT,
    local_pack_position INTEGER,
    featured_snippet BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (keyword_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS competitors (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    domain TEXT NOT NULL,
    location_id BIGINT NOT NULL REFERENCES locations(id),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    UNIQUE (location_id, domain)
);

CREATE TABLE IF NOT EXISTS competitor_rankings (
    id BIGSERIAL PRIMARY KEY,
    competitor_id BIGINT NOT NULL REFERENCES competitors(id),
    keyword_id BIGINT NOT NULL REFERENCES keywords(id),
    recorded_date DATE NOT NULL,
    position INTEGER,
    url TEXT,
    local_pack_position INTEGER,
    UNIQUE (competitor_id, keyword_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS traffic_data (
    id BIGSERIAL PRIMARY KEY,
    recorded_date DATE NOT NULL,
    location_id BIGINT REFERENCES locations(id),
    pageviews BIGINT NOT NULL DEFAULT 0,
    visits BIGINT NOT NULL DEFAULT 0,
    unique_visitors BIGINT NOT NULL DEFAULT 0,
    avg_duration DOUBLE PRECISION,
    bounce_rate DOUBLE PRECISION,
    top_pages JSONB
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_traffic_date_location
    ON traffic_data (recorded_date, (COALESCE(location_id, 0)));

CREATE TABLE IF NOT EXISTS gbp_metrics (
    id BIGSERIAL PRIMARY KEY,
    location_id BIGINT NOT NULL REFERENCES locations(id),
    recorded_date DATE NOT NULL,
    searches_direct BIGINT NOT NULL DEFAULT 0,
    searches_discovery BIGINT NOT NULL DEFAULT 0,
    searches_total BIGINT NOT NULL DEFAULT 0,
    actions_website BIGINT NOT NULL DEFAULT 0,
    actions_phone BIGINT NOT NULL DEFAULT 0,
    actions_directions BIGINT NOT NULL DEFAULT 0,
    actions_total BIGINT NOT NULL DEFAULT 0,
    UNIQUE (location_id, recorded_date)
);

CREATE TABLE IF NOT EXISTS search_console_data (
    id BIGSERIAL PRIMARY KEY,
    recorded_date DATE NOT NULL,
    query TEXT NOT NULL,
    page TEXT NOT NULL,
    location_id BIGINT REFERENCES locations(id),
    clicks BIGINT NOT NULL DEFAULT 0,
    impressions BIGINT NOT NULL DEFAULT 0,
    ctr DOUBLE PRECISION NOT NULL DEFAULT 0,
    position DOUBLE PRECISION NOT NULL DEFAULT 0,
    UNIQUE (recorded_date, query, page)
);

CREATE TABLE IF NOT EXISTS content_pieces (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    url TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('blog', 'service-page', 'video', 'resource')),
    location_id BIGINT REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS video_metrics (
    id BIGSERIAL PRIMARY KEY,
    content_id BIGINT REFERENCES content_pieces(id),
    platform TEXT NOT NULL CHECK (platform IN ('youtube', 'bunny')),
    external_id TEXT NOT NULL,
    recorded_date DATE NOT NULL,
    views BIGINT NOT NULL DEFAULT 0,
    likes BIGINT NOT NULL DEFAULT 0,
    comments BIGINT NOT NULL DEFAULT 0,
    avg_view_duration DOUBLE PRECISION,
    UNIQUE (external_id, platform, recorded_date)
);

CREATE INDEX IF NOT EXISTS idx_keywords_active ON keywords(is_active);
CREATE INDEX IF NOT EXISTS idx_rankings_keyword_date ON keyword_rankings(keyword_id, recorded_date);
CREATE INDEX IF NOT EXISTS idx_search_console_date ON search_console_data(recorded_date);
`
