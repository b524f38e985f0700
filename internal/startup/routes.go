package startup

import (
	"sort"
	"strings"

	"clipfilter/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo describes one method of a registered route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists every route of router in registration order. Routes
// without a method matcher are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: path, Name: route.GetName()})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the access log settings and, at debug level, the route
// table grouped by API resource.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		logRouteTable(router)
	}

	logging.Info("  Access log: W3C extended format")
	logging.Info("    Static files:  %s", onOff(logStaticFiles, "LOG_STATIC_FILES"))
	logging.Info("    Health checks: %s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS"))
}

func logRouteTable(router *mux.Router) {
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		group := getRouteGroup(route.Path)
		if group == "" {
			group = "root"
		}
		groups[group] = append(groups[group], route)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	logging.Debug("  Registered routes (%d total):", len(routes))
	for _, name := range names {
		logging.Debug("  [%s]", name)
		for _, route := range groups[name] {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}
}

// getRouteGroup returns "api/<resource>" for API routes and the first path
// segment otherwise.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		resource, _, _ := strings.Cut(rest, "/")
		return "api/" + resource
	}
	return first
}

func onOff(enabled bool, env string) string {
	if enabled {
		return "ON"
	}
	return "OFF (set " + env + "=true to enable)"
}
