package globals

var WebReloadChan = make(chan bool)
var MetricsReloadChan = make(chan bool)
var ResolverReloadChan = make(chan bool)
