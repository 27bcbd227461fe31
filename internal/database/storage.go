package database

const DB_NAME = "db.db"

const DB_SCHEMA = `CREATE TABLE ProductMapping (
	ID integer PRIMARY KEY AUTOINCREMENT,
	MsID text NOT NULL UNIQUE,
	WooID integer NOT NULL,
	Sku text,
	Name text,
	UpdatedAt text
);

CREATE TABLE CategoryMapping (
	ID integer PRIMARY KEY AUTOINCREMENT,
	MsID text NOT NULL UNIQUE,
	WooID integer NOT NULL,
	Name text
);

CREATE TABLE OrderMapping (
	ID integer PRIMARY KEY AUTOINCREMENT,
	WooID integer NOT NULL UNIQUE,
	MsID text NOT NULL,
	MsName text,
	Status text,
	UpdatedAt text
);

CREATE TABLE Image (
	ID integer PRIMARY KEY AUTOINCREMENT,
	WooProductID integer NOT NULL,
	MsHref text NOT NULL,
	MediaID integer,
	Pos integer
);
`
