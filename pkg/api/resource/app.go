package resource

import (
	"sort"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

type AppResource struct {
	PackageName string `json:"packageName"`
	AppName     string `json:"appName"`
	Allowed     bool   `json:"allowed"`
}

type AppListResource struct {
	Members []*AppResource `json:"members"`
}

func NewAppList(entries []model.AppEntry) (out *AppListResource) {
	out = &AppListResource{
		Members: make([]*AppResource, 0),
	}

	for _, e := range entries {
		out.Members = append(out.Members, &AppResource{
			PackageName: e.PackageName,
			AppName:     e.AppName,
			Allowed:     e.Allowed,
		})
	}

	// Sort alphabetically like the selection screen
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].AppName < out.Members[j].AppName
	})

	return // out
}
