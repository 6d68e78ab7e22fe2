package sqldb

// Each dialect's schema is a list of single statements; the MySQL driver
// rejects multi-statement Exec unless multiStatements is set on the DSN.
var schemas = map[Dialect][]string{
	DialectMySQL: {
		`CREATE TABLE IF NOT EXISTS splits (
            id CHAR(36) NOT NULL PRIMARY KEY,
            total BIGINT NOT NULL,
            base_share BIGINT NOT NULL,
            remainder BIGINT NOT NULL,
            recipient_count INT NOT NULL,
            created_at BIGINT NOT NULL,
            INDEX idx_splits_created_at (created_at)
        )`,
		`CREATE TABLE IF NOT EXISTS split_shares (
            split_id CHAR(36) NOT NULL,
            seq INT NOT NULL,
            email VARCHAR(320) NOT NULL,
            amount BIGINT NOT NULL,
            PRIMARY KEY (split_id, seq),
            CONSTRAINT fk_split_shares_split FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE
        )`,
	},
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS splits (
            id TEXT PRIMARY KEY,
            total INTEGER NOT NULL,
            base_share INTEGER NOT NULL,
            remainder INTEGER NOT NULL,
            recipient_count INTEGER NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_splits_created_at ON splits(created_at)`,
		`CREATE TABLE IF NOT EXISTS split_shares (
            split_id TEXT NOT NULL,
            seq INTEGER NOT NULL,
            email TEXT NOT NULL,
            amount INTEGER NOT NULL,
            PRIMARY KEY (split_id, seq),
            FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE
        )`,
	},
}
