package store

// createSchema is applied to a fresh cache database.
const createSchema = `
CREATE TABLE SourceFile (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  platform TEXT NOT NULL,
  path TEXT NOT NULL,
  mod_time INTEGER NOT NULL,
  size INTEGER NOT NULL,
  variant TEXT NOT NULL DEFAULT '',
  parsed_at DATETIME NOT NULL,
  UNIQUE (platform, path)
);

CREATE TABLE Event (
  file INTEGER NOT NULL,
  seq INTEGER NOT NULL,
  date INTEGER NOT NULL,
  song_title TEXT NOT NULL,
  artist TEXT NOT NULL,
  album_title TEXT NOT NULL,
  seconds REAL NOT NULL,
  ip_address TEXT NOT NULL DEFAULT '',
  country_code TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (file) REFERENCES SourceFile(id),
  PRIMARY KEY (file, seq)
);
`
