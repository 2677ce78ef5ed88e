package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    user_name     TEXT NOT NULL,
    email         TEXT NOT NULL DEFAULT '',
    phone_number  TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS prize (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    price        NUMERIC(12, 2) NOT NULL DEFAULT 0,
    image_url    TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS activity (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS activity_prize (
    activity_id  BIGINT NOT NULL REFERENCES activity (id),
    prize_id     BIGINT NOT NULL REFERENCES prize (id),
    tier         TEXT NOT NULL,
    amount       BIGINT NOT NULL,
    status       TEXT NOT NULL,
    PRIMARY KEY (activity_id, prize_id)
);

CREATE TABLE IF NOT EXISTS activity_user (
    activity_id  BIGINT NOT NULL REFERENCES activity (id),
    user_id      BIGINT NOT NULL,
    user_name    TEXT NOT NULL,
    status       TEXT NOT NULL,
    PRIMARY KEY (activity_id, user_id)
);

CREATE TABLE IF NOT EXISTS winning_record (
    id             BIGSERIAL PRIMARY KEY,
    winner_id      BIGINT NOT NULL,
    winner_name    TEXT NOT NULL,
    winner_email   TEXT NOT NULL DEFAULT '',
    winner_phone   TEXT NOT NULL DEFAULT '',
    activity_id    BIGINT NOT NULL,
    activity_name  TEXT NOT NULL,
    prize_id       BIGINT NOT NULL,
    prize_name     TEXT NOT NULL,
    prize_tier     TEXT NOT NULL,
    winning_time   TIMESTAMPTZ NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (activity_id, prize_id, winner_id)
);

CREATE INDEX IF NOT EXISTS idx_winning_record_activity ON winning_record (activity_id);
`
