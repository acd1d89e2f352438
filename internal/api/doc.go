// Package api provides the workflow trigger gateway REST API.
//
//	@title			Flowgate API
//	@version		1.0
//	@description	Routes tenant automation triggers to workflow instances, provisioning them from tagged templates on first use
//	@BasePath		/
package api
