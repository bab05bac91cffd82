package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Manager --dir ../domain/stattable --output domain/stattable --outpkg stattablemock --filename manager_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Loader --dir ../domain/stattable --output domain/stattable --outpkg stattablemock --filename loader_mock.go
