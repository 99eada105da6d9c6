package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/roster --output domain/roster --outpkg rostermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/statstore --output domain/statstore --outpkg statstoremock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/ingestrun --output domain/ingestrun --outpkg ingestrunmock --filename repository_mock.go
