package repository

// Schema statements are idempotent: they create what is missing and never
// drop or rewrite existing rows.

const postgresSchema = `
CREATE TABLE IF NOT EXISTS authors (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name       VARCHAR(64) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
    CONSTRAINT authors_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS books (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name       VARCHAR(64) NOT NULL,
    author_id  UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
    CONSTRAINT books_name_key UNIQUE (name),
    CONSTRAINT books_author_id_fkey FOREIGN KEY (author_id) REFERENCES authors (id)
);

CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id);
`

// postgresSchemaLock serializes concurrent EnsureSchema calls across
// instances sharing one database.
const postgresSchemaLock = `SELECT pg_advisory_xact_lock(hashtext('library_catalog_schema'))`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS authors (
    id         TEXT PRIMARY KEY NOT NULL,
    name       TEXT NOT NULL CONSTRAINT authors_name_key UNIQUE CHECK (length(name) <= 64),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
    id         TEXT PRIMARY KEY NOT NULL,
    name       TEXT NOT NULL CONSTRAINT books_name_key UNIQUE CHECK (length(name) <= 64),
    author_id  TEXT NOT NULL CONSTRAINT books_author_id_fkey REFERENCES authors (id),
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id);
`
