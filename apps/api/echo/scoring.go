package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core/project"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
)

type scoringApi struct {
	svc      scoring.Service
	projSvc  project.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerScoringAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc scoring.Service,
	projSvc project.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := scoringApi{
		svc:      svc,
		projSvc:  projSvc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	sg := g.Group("/scoring-table", jwt)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update, adminMiddleware())
}

func (api *scoringApi) retrieve(ctx echo.Context) error {
	table, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting scoring table")
	}
	return ctx.JSON(http.StatusOK, table)
}

// update replaces the whole rule table and resyncs all stored project
// scores against it.
func (api *scoringApi) update(ctx echo.Context) error {
	var data scoring.Table
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Table")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	table, err := api.svc.Update(reqCtx, ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "updating scoring table")
	}
	if err = api.projSvc.ResyncScores(reqCtx); err != nil {
		return errors.Wrap(err, "resyncing project scores")
	}
	return ctx.JSON(http.StatusOK, table)
}
