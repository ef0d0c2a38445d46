package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type employee struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []employee
		wantErr bool
	}{
		{
			name: "paginated",
			body: `{"count":1,"results":[{"id":1,"name":"Ana","email":"ana@agency.test"}]}`,
			want: []employee{{ID: 1, Name: "Ana", Email: "ana@agency.test"}},
		},
		{
			name: "named",
			body: `{"employees":[{"id":2,"name":"Bo"}]}`,
			want: []employee{{ID: 2, Name: "Bo"}},
		},
		{name: "no list", body: `{"detail":"ok"}`, want: []employee{}},
		{name: "invalid", body: `<html>`, want: []employee{}},
		{name: "wrong element type", body: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeList[employee]([]byte(tt.body), "employees")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeListWith(t *testing.T) {
	got, err := DecodeListWith[int](New("items"), []byte(`{"results":[1],"items":[2,3]}`))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
}
