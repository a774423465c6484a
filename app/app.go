package app

import (
	"database/sql"

	"github.com/go-chi/jwtauth/v5"
	"github.com/mbolis/formbuilder/config"
	"github.com/mbolis/formbuilder/service"
)

type App struct {
	*sql.DB
	TokenAuth *jwtauth.JWTAuth
	config.Config
	Forms *service.Forms
}

func New(db *sql.DB, cfg config.Config) App {
	return App{
		DB:        db,
		TokenAuth: jwtauth.New("HS256", []byte(cfg.TokenSecret), nil),
		Config:    cfg,
		Forms:     service.NewForms(db),
	}
}
