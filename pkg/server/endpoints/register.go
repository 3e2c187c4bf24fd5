package endpoints

import (
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterCollectionEndpoints[model.Organization, *model.Organization, model.OrganizationPatch](srv.API, model.KindOrganization, srv.Organizations)
	RegisterCollectionEndpoints[model.Location, *model.Location, model.LocationPatch](srv.API, model.KindLocation, srv.Locations)
	RegisterCollectionEndpoints[model.Group, *model.Group, model.GroupPatch](srv.API, model.KindGroup, srv.Groups)
	RegisterCollectionEndpoints[model.Member, *model.Member, model.MemberPatch](srv.API, model.KindMember, srv.Members)

	RegisterStatusEndpoints(srv)
}
