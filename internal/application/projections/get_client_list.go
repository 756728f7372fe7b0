package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"fitcoach/internal/application/listutil"
	domainAccount "fitcoach/internal/domain/account"
)

// ClientSortColumns are the columns the admin client list can be sorted by.
var ClientSortColumns = []string{"nombre", "email", "estado", "alta"}

// ClientFilterKeys are the exact-match filters the admin client list accepts.
var ClientFilterKeys = []string{"estado"}

// GetClientListQuery narrows and orders the client list. The zero value lists
// the first page of every cliente, newest first.
type GetClientListQuery struct {
	Params listutil.Params
}

// GetClientListResult carries the admin panel's client list.
type GetClientListResult struct {
	Clients      []domainAccount.User // current page only
	Params       listutil.Params
	Page         listutil.PageInfo
	PendingCount int // over every cliente, not just the filtered set
	ActiveCount  int
}

// GetClientListDeps holds dependencies for GetClientList.
type GetClientListDeps struct {
	ClientStore ClientStore
}

// QueryGetClientList lists clientes with estado totals. Admins are never listed.
// PRE: none
// POST: Clients matches the search (nombre or email, case-insensitive) and estado filter,
// sorted by the requested column (newest first when unsorted) and cut to one page
func QueryGetClientList(ctx context.Context, query GetClientListQuery, deps GetClientListDeps) (GetClientListResult, error) {
	clients, err := deps.ClientStore.ListClients(ctx)
	if err != nil {
		return GetClientListResult{}, err
	}
	result := GetClientListResult{Params: query.Params}
	for _, c := range clients {
		if c.Estado == domainAccount.EstadoActivo {
			result.ActiveCount++
		} else {
			result.PendingCount++
		}
	}

	matched := filterClients(clients, query.Params)
	sortClients(matched, query.Params)
	result.Clients, result.Page = listutil.Paginate(matched, query.Params.Page, query.Params.PerPage)
	return result, nil
}

func filterClients(clients []domainAccount.User, p listutil.Params) []domainAccount.User {
	needle := strings.ToLower(p.Search)
	estado := p.Filters["estado"]
	out := make([]domainAccount.User, 0, len(clients))
	for _, c := range clients {
		if estado != "" && c.Estado != estado {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) && !strings.Contains(c.Email, needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sortClients orders in place. The store already returns newest first, so an
// empty sort column leaves that order alone.
func sortClients(clients []domainAccount.User, p listutil.Params) {
	var compare func(a, b domainAccount.User) int
	switch p.Sort {
	case "nombre":
		compare = func(a, b domainAccount.User) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "email":
		compare = func(a, b domainAccount.User) int { return cmp.Compare(a.Email, b.Email) }
	case "estado":
		compare = func(a, b domainAccount.User) int { return cmp.Compare(a.Estado, b.Estado) }
	case "alta":
		compare = func(a, b domainAccount.User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return
	}
	if p.Desc {
		asc := compare
		compare = func(a, b domainAccount.User) int { return asc(b, a) }
	}
	slices.SortStableFunc(clients, compare)
}
