package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/user"
)

type personnelApi struct {
	svc      personnel.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerPersonnelAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc personnel.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := personnelApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	eg := g.Group("/personnel", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.POST("/batch", api.createMultiple)
	eg.DELETE("", api.destroyMultiple)

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *personnelApi) create(ctx echo.Context) error {
	var data personnel.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entry, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating personnel entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *personnelApi) createMultiple(ctx echo.Context) error {
	var data []personnel.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry list")
	}
	for i := range data {
		if err := data[i].Validate(api.validate); err != nil {
			return err
		}
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.svc.BatchCreate(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating personnel entries")
	}
	return ctx.JSON(http.StatusCreated, entries)
}

func (api *personnelApi) query(ctx echo.Context) error {
	filter := new(personnel.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []personnel.Entry{})
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.svc.Query(ctx.Request().Context(), ctxUsr, filter)
	if err != nil {
		return errors.Wrap(err, "querying personnel entries")
	}
	if entries == nil {
		entries = []personnel.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *personnelApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entry, err := api.svc.GetByID(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *personnelApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *personnelApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctxUsr, query.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
