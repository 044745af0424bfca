// Package endpoints serves the public webform REST namespace: the site link
// check, form submission echo, per-form stylesheets, ordered field lists,
// contact defaults, and the API document.
//
// Routes are mounted under /dt-public/v1 by default and answer cross-origin
// requests from any origin so forms can be embedded on third party pages.
// Request parameters are read from the JSON body, the form body, and the query
// string, in that order of precedence.
package endpoints
