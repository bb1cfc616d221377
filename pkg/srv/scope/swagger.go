/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package scope

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"

	"jinr.ru/greenlab/go-scope/pkg/log"
)

//go:embed swagger.json
var swaggerJSON []byte

type apiDocs struct {
	doc *loads.Document
}

// newApiDocs parses and analyzes the embedded swagger document so that a
// broken document fails at startup rather than in the browser.
func newApiDocs() (*apiDocs, error) {
	doc, err := loads.Analyzed(json.RawMessage(swaggerJSON), "")
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded API document: %s %s", doc.Spec().Info.Title, doc.Version())
	return &apiDocs{doc: doc}, nil
}

func (d *apiDocs) handleSpec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(d.doc.Raw())
	}
}

func (d *apiDocs) handleRedoc() http.Handler {
	return middleware.Redoc(middleware.RedocOpts{
		Path:    "docs",
		SpecURL: "/swagger.json",
		Title:   d.doc.Spec().Info.Title,
	}, http.NotFoundHandler())
}
